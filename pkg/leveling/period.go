package leveling

import (
	"fmt"
	"time"
)

// Period selects the time window of leaderboards and message counts
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod accepts the English values and their Spanish command choices
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "today", "hoy":
		return PeriodToday, nil
	case "week", "semana":
		return PeriodWeek, nil
	case "month", "mes":
		return PeriodMonth, nil
	case "all", "todo", "":
		return PeriodAll, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Since returns the start of the period relative to now. PeriodAll returns the zero time.
func (p Period) Since(now time.Time) time.Time {
	now = now.UTC()
	switch p {
	case PeriodToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	}
	return time.Time{}
}

// Label is the Spanish name shown in embeds
func (p Period) Label() string {
	switch p {
	case PeriodToday:
		return "Hoy"
	case PeriodWeek:
		return "Esta semana"
	case PeriodMonth:
		return "Este mes"
	}
	return "Todo el tiempo"
}
