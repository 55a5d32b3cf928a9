package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDateIsUnpadded(t *testing.T) {
	loc := time.UTC
	ts := time.Date(2024, time.February, 5, 9, 30, 0, 0, loc).UnixMilli()
	assert.Equal(t, "5.2.2024", formatDate(ts, loc))

	ts = time.Date(2024, time.December, 24, 0, 0, 0, 0, loc).UnixMilli()
	assert.Equal(t, "24.12.2024", formatDate(ts, loc))
}

func TestFormatSeparatorUsesGermanLabels(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, loc)

	// 2024-02-19 was a Monday.
	ts := time.Date(2024, time.February, 19, 8, 0, 0, 0, loc).UnixMilli()
	assert.Equal(t, "Montag, 19 Februar", formatSeparator(ts, now, loc))

	// 2024-03-03 was a Sunday.
	ts = time.Date(2024, time.March, 3, 23, 59, 0, 0, loc).UnixMilli()
	assert.Equal(t, "Sonntag, 3 März", formatSeparator(ts, now, loc))
}

func TestFormatSeparatorToday(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, time.March, 1, 18, 0, 0, 0, loc)

	ts := time.Date(2024, time.March, 1, 0, 1, 0, 0, loc).UnixMilli()
	assert.Equal(t, "Heute", formatSeparator(ts, now, loc))

	// One minute before midnight is yesterday, not today.
	ts = time.Date(2024, time.February, 29, 23, 59, 0, 0, loc).UnixMilli()
	assert.NotEqual(t, "Heute", formatSeparator(ts, now, loc))
}

func TestFormatClockIsZeroPadded(t *testing.T) {
	loc := time.UTC
	ts := time.Date(2024, time.March, 1, 9, 5, 0, 0, loc).UnixMilli()
	assert.Equal(t, "09:05", formatClock(ts, loc))

	ts = time.Date(2024, time.March, 1, 23, 59, 0, 0, loc).UnixMilli()
	assert.Equal(t, "23:59", formatClock(ts, loc))
}
