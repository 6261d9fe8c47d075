package utils

import (
	"fmt"
	"math"
	"strings"
)

const (
	secondsPerYear   = 31536000
	secondsPerMonth  = 2592000 // 30 day months
	secondsPerDay    = 86400
	secondsPerHour   = 3600
	secondsPerMinute = 60
)

func pluralize(amount int64, unit string) string {
	if amount == 1 {
		return fmt.Sprintf("%d %s", amount, unit)
	}
	return fmt.Sprintf("%d %ss", amount, unit)
}

// FormatAge renders a duration in seconds as a human readable string,
// largest unit first, skipping zero components. In short mode only the
// first non-zero unit of years, months and days is emitted, with days
// rounded up to one so a young duck never reads as ageless.
func FormatAge(seconds float64, short bool) string {
	var parts []string

	years := int64(math.Floor(seconds / secondsPerYear))
	remainder := math.Mod(seconds, secondsPerYear)

	if years > 0 {
		parts = append(parts, pluralize(years, "year"))
		if short {
			return strings.Join(parts, " ")
		}
	}

	months := int64(math.Floor(remainder / secondsPerMonth))
	remainder = math.Mod(remainder, secondsPerMonth)

	if months > 0 {
		parts = append(parts, pluralize(months, "month"))
		if short {
			return strings.Join(parts, " ")
		}
	}

	days := int64(math.Floor(remainder / secondsPerDay))
	remainder = math.Mod(remainder, secondsPerDay)

	if short && days == 0 {
		days = 1
	}

	if days > 0 {
		parts = append(parts, pluralize(days, "day"))
		if short {
			return strings.Join(parts, " ")
		}
	}

	hours := int64(math.Floor(remainder / secondsPerHour))
	remainder = math.Mod(remainder, secondsPerHour)

	if hours > 0 {
		parts = append(parts, pluralize(hours, "hour"))
	}

	minutes := int64(math.Floor(remainder / secondsPerMinute))

	if minutes > 0 {
		parts = append(parts, pluralize(minutes, "minute"))
	}

	secs := int64(math.Round(math.Mod(remainder, secondsPerMinute)))

	if secs > 0 {
		parts = append(parts, pluralize(secs, "second"))
	}

	if len(parts) == 0 {
		return "a few moments"
	}

	return strings.Join(parts, " ")
}
