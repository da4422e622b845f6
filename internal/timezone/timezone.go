package timezone

import (
	"errors"
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "Europe/Kyiv"

const (
	DateLayout      = "2006-01-02"
	LocalDateTime   = "2006-01-02T15:04"
	LocalDateTimeS  = "2006-01-02T15:04:05"
	LocalDateTimeSp = "2006-01-02 15:04"
)

var ErrInvalidDateTime = errors.New("invalid date or time")

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// ParseDate parses YYYY-MM-DD as local midnight in tz.
func ParseDate(tz, s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, Location(tz))
	if err != nil {
		return time.Time{}, ErrInvalidDateTime
	}
	return t, nil
}

// ParseDateTime accepts RFC3339 (explicit offset) or a wall-clock value
// without offset, which is interpreted in tz.
func ParseDateTime(tz, s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	loc := Location(tz)
	for _, layout := range []string{LocalDateTime, LocalDateTimeS, LocalDateTimeSp} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDateTime
}

// DayBounds returns [00:00, next 00:00) of the local day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// Normalize is the canonical storage form of an instant: UTC, whole minutes.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}
