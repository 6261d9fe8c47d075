package utils

import "regexp"

var hexColorPattern = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// ValidHexColor reports whether s is a six digit hex color triplet
// without a leading hash.
func ValidHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}
