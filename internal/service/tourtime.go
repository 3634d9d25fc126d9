package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(AM|PM)`)

// Ordered so "Monday or Tuesday" deterministically resolves to Monday.
var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// ParseTourDatetime resolves conversational date/time strings like
// "next Monday" and "2 PM" into a concrete time relative to now. A day name
// is required; without one the zero time is returned and the caller stores
// no tour datetime. A missing or unparseable clock defaults to 2 PM. Day
// names that land today or in the past roll to next week; "next" adds a
// week to the raw Monday-based offset instead of rolling.
func ParseTourDatetime(now time.Time, dateStr, timeStr string) time.Time {
	hour, minute := 14, 0
	if m := clockPattern.FindStringSubmatch(timeStr); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		switch strings.ToUpper(m[3]) {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}
	}

	dateLower := strings.ToLower(dateStr)
	var target time.Weekday
	found := false
	for _, wd := range weekdays {
		if strings.Contains(dateLower, wd.name) {
			target, found = wd.day, true
			break
		}
	}
	if !found {
		return time.Time{}
	}

	// Monday-based day numbers, so a week runs Monday..Sunday and a Sunday
	// "next Monday" lands tomorrow rather than eight days out.
	daysAhead := mondayIndex(target) - mondayIndex(now.Weekday())
	if strings.Contains(dateLower, "next") {
		daysAhead += 7
	} else if daysAhead <= 0 {
		daysAhead += 7
	}

	date := now.AddDate(0, 0, daysAhead)
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, now.Location())
}

// mondayIndex maps time.Weekday (Sunday=0) to Monday=0..Sunday=6.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
