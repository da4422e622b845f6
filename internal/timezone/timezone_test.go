package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocation_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultTimezone, Location("Not/AZone").String())
	assert.Equal(t, "Europe/Warsaw", Location("Europe/Warsaw").String())
}

func TestParseDateTime(t *testing.T) {
	utc, err := ParseDateTime("Europe/Warsaw", "2026-11-02T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, utc.UTC().Hour())

	local, err := ParseDateTime("Europe/Warsaw", "2026-11-02T10:00")
	require.NoError(t, err)
	assert.Equal(t, 9, local.UTC().Hour())

	spaced, err := ParseDateTime("Europe/Warsaw", "2026-11-02 10:00")
	require.NoError(t, err)
	assert.True(t, spaced.Equal(local))

	_, err = ParseDateTime("Europe/Warsaw", "tomorrow")
	assert.ErrorIs(t, err, ErrInvalidDateTime)
}

func TestDayBounds(t *testing.T) {
	d, err := ParseDate("Europe/Warsaw", "2026-11-02")
	require.NoError(t, err)

	start, end := DayBounds(d.Add(15 * time.Hour))
	assert.True(t, start.Equal(d))
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	_, err = ParseDate("Europe/Warsaw", "02.11.2026")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	in := time.Date(2026, 11, 2, 10, 30, 45, 123, time.FixedZone("X", 3600))
	out := Normalize(in)
	assert.Equal(t, time.UTC, out.Location())
	assert.Equal(t, 0, out.Second())
	assert.Equal(t, 9, out.Hour())
}
