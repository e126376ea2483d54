package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDayCrossesMidnightInBRT(t *testing.T) {
	// 01:30 UTC is still the previous day in Brasilia (22:30)
	utc := time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC)
	start := StartOfDay(utc)

	assert.Equal(t, 9, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, BRT, start.Location())
}

func TestDateStringAndParseRoundTrip(t *testing.T) {
	parsed, err := ParseDate("2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", DateString(parsed))
	assert.Equal(t, parsed, StartOfDay(parsed))
}

func TestEndOfDay(t *testing.T) {
	d, err := ParseDate("2026-03-09")
	require.NoError(t, err)
	end := EndOfDay(d)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 9, end.Day())
}
