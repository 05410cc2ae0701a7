package content

import (
	"reflect"
	"testing"
)

func TestSplitCommaList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "Go, React, SQLite", []string{"Go", "React", "SQLite"}},
		{"extra whitespace", "  Go ,   React  ", []string{"Go", "React"}},
		{"blank entries dropped", "Go,,React,", []string{"Go", "React"}},
		{"duplicates preserved", "Go,Go", []string{"Go", "Go"}},
		{"empty", "   ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitCommaList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitCommaList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "first\nsecond", []string{"first", "second"}},
		{"blank lines dropped", "first\n\n  \nsecond\n", []string{"first", "second"}},
		{"windows endings", "first\r\nsecond", []string{"first", "second"}},
		{"commas kept inside lines", "built APIs, dashboards\nled a team", []string{"built APIs, dashboards", "led a team"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitLines(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLines(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinRoundTrip(t *testing.T) {
	items := []string{"one", "two", "three"}
	if got := SplitLines(JoinLines(items)); !reflect.DeepEqual(got, items) {
		t.Errorf("lines round trip = %v", got)
	}
	if got := SplitCommaList(JoinCommaList(items)); !reflect.DeepEqual(got, items) {
		t.Errorf("comma round trip = %v", got)
	}
}
