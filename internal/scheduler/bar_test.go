package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeframe(t *testing.T) {
	cases := map[string]time.Duration{
		"15m": 15 * time.Minute,
		"1h":  time.Hour,
		"4h":  4 * time.Hour,
		"1d":  24 * time.Hour,
		"1D":  24 * time.Hour,
		" 5m": 5 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseTimeframe(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "m", "15", "0m", "-5m", "15x", "abc"} {
		_, err := ParseTimeframe(in)
		assert.Error(t, err, in)
	}
}

func TestBarCloseMillis(t *testing.T) {
	// 12:07:33 truncates to the 12:00 boundary on a 15m bar
	now := time.Date(2025, 6, 1, 12, 7, 33, 0, time.UTC)
	got := BarCloseMillis(15*time.Minute, now)
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, want, got)

	// exactly on the boundary maps to itself
	now = time.Date(2025, 6, 1, 12, 15, 0, 0, time.UTC)
	assert.Equal(t, now.UnixMilli(), BarCloseMillis(15*time.Minute, now))
}

func TestBarClosed(t *testing.T) {
	bar := 15 * time.Minute
	open := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, BarClosed(open.UnixMilli(), bar, open.Add(14*time.Minute)))
	assert.True(t, BarClosed(open.UnixMilli(), bar, open.Add(15*time.Minute)))
	assert.True(t, BarClosed(open.UnixMilli(), bar, open.Add(16*time.Minute)))
}
