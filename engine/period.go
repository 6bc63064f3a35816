package engine

import (
	"time"
)

// Period selects which xp a leaderboard ranks: all-time totals or xp earned
// inside the current calendar window.
type Period string

const (
	PeriodAll     Period = "all"
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

var Periods = []Period{PeriodAll, PeriodDaily, PeriodWeekly, PeriodMonthly}

// ParsePeriod accepts the period names; empty means all-time.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return PeriodAll, nil
	}
	for _, p := range Periods {
		if Period(s) == p {
			return p, nil
		}
	}
	return "", invalidArgf("unknown leaderboard period %q", s)
}

// Window returns the half-open UTC interval [start, end) containing now.
// Days start at midnight, weeks on Monday, months on the 1st. ok is false for PeriodAll.
func (p Period) Window(now time.Time) (start, end time.Time, ok bool) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case PeriodDaily:
		return today, today.AddDate(0, 0, 1), true
	case PeriodWeekly:
		// time.Weekday is 0 on Sunday
		offset := (int(now.Weekday()) + 6) % 7
		start = today.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), true
	case PeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), true
	}
	return time.Time{}, time.Time{}, false
}
