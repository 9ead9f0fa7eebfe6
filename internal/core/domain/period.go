package domain

import "time"

// PeriodKind identifies a spending-limit window.
type PeriodKind string

const (
	PeriodDaily   PeriodKind = "daily"
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
)

// PeriodKinds lists all kinds in the order limits are checked. The order
// is fixed so that the violated kind reported on rejection is
// deterministic.
var PeriodKinds = []PeriodKind{PeriodDaily, PeriodWeekly, PeriodMonthly}

// ParsePeriodKind validates a period kind string.
func ParsePeriodKind(s string) (PeriodKind, bool) {
	switch PeriodKind(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return PeriodKind(s), true
	}
	return "", false
}

// PeriodStart returns the inclusive start of the window containing now,
// in now's location:
//
//	daily:   midnight of now's calendar day
//	weekly:  midnight of the most recent Sunday on/before now
//	monthly: midnight of the 1st of now's month
//
// A transaction stamped exactly at the boundary belongs to the new window.
func PeriodStart(kind PeriodKind, now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch kind {
	case PeriodDaily:
		return midnight
	case PeriodWeekly:
		return midnight.AddDate(0, 0, -int(now.Weekday()))
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
	return time.Time{}
}
