package content

import "strings"

// SplitCommaList converts comma-separated text into an ordered list.
// Entries are trimmed of surrounding whitespace and blank entries are
// dropped; duplicates are preserved as entered.
func SplitCommaList(s string) []string {
	return splitAndClean(s, ",")
}

// SplitLines converts multi-line text into an ordered list, one entry per
// line, with the same trimming rules as SplitCommaList.
func SplitLines(s string) []string {
	return splitAndClean(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// CleanList trims every entry and drops blank ones, preserving order.
func CleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// JoinLines renders a list back to multi-line edit text.
func JoinLines(items []string) string {
	return strings.Join(items, "\n")
}

// JoinCommaList renders a list back to comma-separated edit text.
func JoinCommaList(items []string) string {
	return strings.Join(items, ", ")
}

func splitAndClean(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return CleanList(strings.Split(s, sep))
}
