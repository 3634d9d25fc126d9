package service

import (
	"testing"
	"time"
)

func TestParseTourDatetime(t *testing.T) {
	// A Tuesday.
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dateStr string
		timeStr string
		want    time.Time
	}{
		{
			name:    "upcoming weekday with afternoon time",
			dateStr: "Friday",
			timeStr: "2 PM",
			want:    time.Date(2026, 9, 4, 14, 0, 0, 0, time.UTC),
		},
		{
			name:    "minutes preserved",
			dateStr: "Friday",
			timeStr: "10:30 AM",
			want:    time.Date(2026, 9, 4, 10, 30, 0, 0, time.UTC),
		},
		{
			name:    "same weekday rolls to next week",
			dateStr: "Tuesday",
			timeStr: "2 PM",
			want:    time.Date(2026, 9, 8, 14, 0, 0, 0, time.UTC),
		},
		{
			name:    "past weekday rolls to next week",
			dateStr: "Monday",
			timeStr: "2 PM",
			want:    time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC),
		},
		{
			name:    "next adds a full week",
			dateStr: "next Friday",
			timeStr: "2 PM",
			want:    time.Date(2026, 9, 11, 14, 0, 0, 0, time.UTC),
		},
		{
			name:    "missing time defaults to 2 PM",
			dateStr: "Wednesday",
			timeStr: "",
			want:    time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC),
		},
		{
			name:    "12 PM stays noon",
			dateStr: "Thursday",
			timeStr: "12 PM",
			want:    time.Date(2026, 9, 3, 12, 0, 0, 0, time.UTC),
		},
		{
			name:    "12 AM wraps to midnight",
			dateStr: "Thursday",
			timeStr: "12 AM",
			want:    time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "lowercase clock accepted",
			dateStr: "thursday",
			timeStr: "4:15 pm",
			want:    time.Date(2026, 9, 3, 16, 15, 0, 0, time.UTC),
		},
		{
			// "next Monday" on a Tuesday is the coming Monday, six days
			// out, not the one after.
			name:    "day name inside a sentence",
			dateStr: "how about next Monday?",
			timeStr: "11 AM",
			want:    time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
		},
		{
			name:    "next weekday later in the week skips ahead",
			dateStr: "next Sunday",
			timeStr: "2 PM",
			want:    time.Date(2026, 9, 13, 14, 0, 0, 0, time.UTC),
		},
		{
			name:    "no day name yields zero time",
			dateStr: "tomorrow",
			timeStr: "2 PM",
			want:    time.Time{},
		},
		{
			name:    "empty input yields zero time",
			dateStr: "",
			timeStr: "",
			want:    time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTourDatetime(now, tt.dateStr, tt.timeStr)
			if !got.Equal(tt.want) {
				t.Errorf("ParseTourDatetime(%q, %q) = %v, want %v", tt.dateStr, tt.timeStr, got, tt.want)
			}
		})
	}
}

// Weeks run Monday through Sunday, so on a Sunday "next Monday" is
// tomorrow, not eight days out.
func TestParseTourDatetimeAcrossWeekBoundary(t *testing.T) {
	// A Sunday.
	now := time.Date(2026, 9, 6, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dateStr string
		want    time.Time
	}{
		{
			name:    "next Monday on a Sunday is tomorrow",
			dateStr: "next Monday",
			want:    time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC),
		},
		{
			name:    "bare Monday on a Sunday is tomorrow",
			dateStr: "Monday",
			want:    time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC),
		},
		{
			name:    "Sunday on a Sunday rolls a full week",
			dateStr: "Sunday",
			want:    time.Date(2026, 9, 13, 14, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTourDatetime(now, tt.dateStr, "2 PM")
			if !got.Equal(tt.want) {
				t.Errorf("ParseTourDatetime(%q) = %v, want %v", tt.dateStr, got, tt.want)
			}
		})
	}
}
