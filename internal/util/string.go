package util

import "strings"

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Slugify lowercases a name and joins its words with underscores for file names.
func Slugify(name string) string {
	var builder strings.Builder
	for _, word := range strings.Fields(Normalize(name)) {
		cleaned := strings.Map(func(r rune) rune {
			switch r {
			case '/', '\\', '\'', '"', '.', '!', '?', ':', '*', '<', '>', '|':
				return -1
			}
			return r
		}, word)
		if cleaned == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteByte('_')
		}
		builder.WriteString(cleaned)
	}
	return builder.String()
}

// SplitComma splits on commas, trims each part and drops empty ones.
func SplitComma(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// UniqueStrings removes duplicates and empty strings, keeping first occurrences in order.
func UniqueStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, exists := seen[item]; exists {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}

// Capitalize upper-cases the first letter.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}

// Contains checks if a string slice contains a specific item
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
