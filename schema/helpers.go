package schema

import (
	"strings"
	"time"
)

// statusAliases maps the labels produced by scheduling services onto SlotStatus.
var statusAliases = map[string]SlotStatus{
	"in_progress": InProgressStatus,
	"in-progress": InProgressStatus,
	"inprogress":  InProgressStatus,
	"running":     InProgressStatus,
	"执行中":         InProgressStatus,
	"completed":   CompletedStatus,
	"complete":    CompletedStatus,
	"done":        CompletedStatus,
	"执行完成":        CompletedStatus,
	"pending":     PendingStatus,
	"scheduled":   PendingStatus,
	"待执行":         PendingStatus,
}

// ParseSlotStatus normalizes a raw status label. Empty stays empty.
func ParseSlotStatus(raw string) SlotStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if status, ok := statusAliases[s]; ok {
		return status
	}
	return OtherStatus
}

// DateOf returns the calendar date of t as written in its own location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatMinute renders an optional timestamp at minute precision.
func FormatMinute(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(MinuteLayout)
}

// DaysBetween returns how many days last lies after first. The result is
// negative when last precedes first, and ok is false if either date is invalid.
func DaysBetween(first, last string) (days int, ok bool) {
	from, err := time.Parse(DateLayout, first)
	if err != nil {
		return 0, false
	}
	to, err := time.Parse(DateLayout, last)
	if err != nil {
		return 0, false
	}
	return int((to.Unix() - from.Unix()) / 86400), true
}

// DateRange returns every date from first to last inclusive.
// It returns nil when last precedes first or lies more than MaxSpanDays after it.
func DateRange(first, last string) []string {
	days, ok := DaysBetween(first, last)
	if !ok || days < 0 || days > MaxSpanDays {
		return nil
	}
	from, _ := time.Parse(DateLayout, first)
	dates := make([]string, 0, days+1)
	for i := 0; i <= days; i++ {
		dates = append(dates, from.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates
}
