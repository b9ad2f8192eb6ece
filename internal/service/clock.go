package service

import "time"

// Clock returns the current time. Trackers take one so tests can pin "today".
type Clock func() time.Time

const dateLayout = "2006-01-02"

// formatDate renders t as an ISO calendar date in t's own location.
func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// parseDate parses an ISO calendar date at midnight in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, loc)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func addDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// addMonths adds n calendar months, clamping to the last day of the target
// month (Jan 31 + 1 month = Feb 28/29) instead of overflowing into the next.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// endOfWeek returns the Sunday closing t's Monday-start week.
func endOfWeek(t time.Time) time.Time {
	return addDays(startOfDay(t), (7-int(t.Weekday()))%7)
}

// startOfWeek returns the Monday opening t's week.
func startOfWeek(t time.Time) time.Time {
	return addDays(startOfDay(t), -((int(t.Weekday()) + 6) % 7))
}
