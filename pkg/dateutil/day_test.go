package dateutil

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestStartOfDay(t *testing.T) {
	is := is.New(t)
	loc := time.FixedZone("test", 2*60*60)
	in := time.Date(2026, 3, 14, 23, 59, 59, 999, loc)
	is.Equal(StartOfDay(in), time.Date(2026, 3, 14, 0, 0, 0, 0, loc))
}

func TestDayBefore(t *testing.T) {
	is := is.New(t)
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	is.True(DayBefore(now.AddDate(0, 0, -1), now))
	is.True(!DayBefore(now.Add(-8*time.Hour), now)) // earlier the same day
	is.True(!DayBefore(now.AddDate(0, 0, 1), now))
}

func TestParseDay(t *testing.T) {
	is := is.New(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	d, err := ParseDay("2026-04-01", now, time.UTC)
	is.NoErr(err)
	is.Equal(d, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

	d, err = ParseDay("tomorrow", now, time.UTC)
	is.NoErr(err)
	is.Equal(d, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))

	_, err = ParseDay("14/03/2026", now, time.UTC)
	is.True(err != nil)
}
