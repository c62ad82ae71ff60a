package model

import "time"

// Key layouts for temporal bucketing. Keys sort lexicographically in
// chronological order, which the report writers rely on for tie-breaking.
const (
	// HourKeyLayout buckets posts by hour, e.g. "2023-03-15 14".
	HourKeyLayout = "2006-01-02 15"

	// DayKeyLayout buckets posts by day, e.g. "2023-03-15".
	DayKeyLayout = "2006-01-02"
)

// HourKey returns the hour bucket key for a timestamp.
func HourKey(t time.Time) string {
	return t.Format(HourKeyLayout)
}

// DayKey returns the day bucket key for a timestamp.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// FormatHourRange renders an hour bucket key as a human-readable range,
// e.g. "2023-03-15 14" becomes "2023-03-15 14:00 to 2023-03-15 15:00".
// Keys that do not parse are returned unchanged.
func FormatHourRange(hourKey string) string {
	t, err := time.Parse(HourKeyLayout, hourKey)
	if err != nil {
		return hourKey
	}
	end := t.Add(time.Hour)
	return t.Format("2006-01-02 15:00") + " to " + end.Format("2006-01-02 15:00")
}
