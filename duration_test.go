package showcase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDuration(t *testing.T) {
	day := func(s string) time.Time {
		d, err := ParseDate(s)
		require.NoError(t, err)

		return d
	}

	assert.Equal(t, 0, CalculateDuration(day("2024-01-01"), day("2024-01-01")))
	assert.Equal(t, 31, CalculateDuration(day("2024-01-01"), day("2024-02-01")))
	assert.Equal(t, 31, CalculateDuration(day("2024-02-01"), day("2024-01-01")))
	assert.Equal(t, 1, CalculateDuration(day("2024-01-01T00:00:00Z"), day("2024-01-01T01:00:00Z")))
	assert.Equal(t, 366, CalculateDuration(day("2024-01-01"), day("2025-01-01")))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-03-01 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-03-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, d.UTC().Hour())

	_, err = ParseDate("yesterday")
	assert.Error(t, err)
}
