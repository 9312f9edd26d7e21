package transform

import (
	"time"

	"github.com/vvka-141/pgetl/pkg/pgetl"
)

// TimestampFromMillis interprets ms as milliseconds since the Unix epoch, in UTC.
func TimestampFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// NewTimeBucket derives the calendar attributes of ts in UTC. Week is the ISO
// week number, Year the calendar year and Weekday counts from Monday = 0.
func NewTimeBucket(ts time.Time) pgetl.TimeBucket {
	ts = ts.UTC()
	_, week := ts.ISOWeek()
	return pgetl.TimeBucket{
		Timestamp: ts,
		Hour:      ts.Hour(),
		Day:       ts.Day(),
		Week:      week,
		Month:     int(ts.Month()),
		Year:      ts.Year(),
		Weekday:   (int(ts.Weekday()) + 6) % 7,
	}
}
