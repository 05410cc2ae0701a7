package content

import (
	"sort"
	"strings"
	"time"
)

// Sorts are stable so records tying on the sort key keep the store's
// insertion order.

// SortProjects orders by display_order ascending.
func SortProjects(list []ProjectRecord) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].DisplayOrder < list[j].DisplayOrder
	})
}

// SortSkills orders by category (alphabetical), then display_order ascending.
func SortSkills(list []SkillRecord) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Category == list[j].Category {
			return list[i].DisplayOrder < list[j].DisplayOrder
		}
		return strings.Compare(list[i].Category, list[j].Category) < 0
	})
}

// SortExperiences orders by start_date descending (most recent first).
func SortExperiences(list []ExperienceRecord) {
	sort.SliceStable(list, func(i, j int) bool {
		return compareStartDates(list[i].StartDate, list[j].StartDate) > 0
	})
}

// SortMessages orders by timestamp descending (newest first).
func SortMessages(list []MessageRecord) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp > list[j].Timestamp
	})
}

var dateLayouts = []string{"2006-01-02", "2006-01", "2006", "Jan 2006", "January 2006"}

// parseDate attempts the admin form's date formats.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// compareStartDates returns -1, 0 or 1. Dates both parseable compare as
// times. A parseable date always compares greater than an unparseable
// one, so in the descending timeline free-form input sinks below every
// real date; unparseable pairs compare lexicographically, which at least
// keeps their order deterministic.
func compareStartDates(a, b string) int {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	switch {
	case okA && okB:
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		default:
			return 0
		}
	case okA:
		return 1
	case okB:
		return -1
	default:
		return strings.Compare(a, b)
	}
}
