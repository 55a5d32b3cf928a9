package chat

import (
	"fmt"
	"time"
)

// Chat timestamps are epoch milliseconds. Labels follow the product's German
// locale: time separators read "Montag, 21 Februar", the current day reads
// "Heute".

const todayLabel = "Heute"

var germanWeekdays = [...]string{
	"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag",
}

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

func fromMillis(ts int64, loc *time.Location) time.Time {
	return time.UnixMilli(ts).In(loc)
}

// formatDate renders d.m.yyyy without zero padding, e.g. "21.2.2024".
func formatDate(ts int64, loc *time.Location) string {
	t := fromMillis(ts, loc)
	return fmt.Sprintf("%d.%d.%d", t.Day(), int(t.Month()), t.Year())
}

// formatSeparator renders the day separator label, or the today sentinel if
// ts falls on the same calendar day as now in the viewer's location.
func formatSeparator(ts int64, now time.Time, loc *time.Location) string {
	t := fromMillis(ts, loc)
	if sameCalendarDay(t, now.In(loc)) {
		return todayLabel
	}
	return fmt.Sprintf("%s, %d %s", germanWeekdays[t.Weekday()], t.Day(), germanMonths[t.Month()-1])
}

// formatClock renders a zero-padded 24h time, e.g. "09:05".
func formatClock(ts int64, loc *time.Location) string {
	return fromMillis(ts, loc).Format("15:04")
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
