package state

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// DaysSince returns whole days elapsed between last and now, never negative.
func DaysSince(last, now time.Time) int {
	elapsed := now.Sub(last)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / day)
}

// ReminderDue reports whether thresholdDays have passed since last. A
// threshold of zero disables reminders, and a machine that never applied is
// not reminded.
func ReminderDue(last time.Time, applied bool, thresholdDays int, now time.Time) (days int, due bool) {
	if !applied {
		return 0, false
	}
	days = DaysSince(last, now)
	if thresholdDays <= 0 {
		return days, false
	}
	return days, now.Sub(last) >= time.Duration(thresholdDays)*day
}

// FormatDays renders a day count as "1 day" or "N days".
func FormatDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// FormatLastApply renders the apply header value: "Never" or "N days".
func FormatLastApply(last time.Time, applied bool, now time.Time) string {
	if !applied {
		return "Never"
	}
	return FormatDays(DaysSince(last, now))
}
