package utils

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// TemplateFuncs returns the helper functions available in templates.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime": formatTime,
		"capitalize": capitalize,
		"truncate":   truncate,
		"pluralize":  pluralize,
		"percentage": percentage,
		"add":        add,
	}
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	if length <= 3 {
		return s[:length]
	}
	return s[:length-3] + "..."
}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

func percentage(value float64) string {
	return fmt.Sprintf("%.1f%%", value*100)
}

func add(a, b int) int {
	return a + b
}
