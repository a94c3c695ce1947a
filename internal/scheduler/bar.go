package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimeframe parses "15m", "1h", "4h", "1d" into the bar duration.
func ParseTimeframe(tf string) (time.Duration, error) {
	tf = strings.ToLower(strings.TrimSpace(tf))
	if len(tf) < 2 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
	n, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
	switch tf[len(tf)-1] {
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
}

// BarCloseMillis returns the close timestamp (ms) of the most recently
// completed bar boundary at or before now. Used for at-most-once-per-bar
// cycle deduplication.
func BarCloseMillis(bar time.Duration, now time.Time) int64 {
	if bar <= 0 {
		return now.UnixMilli()
	}
	return now.Truncate(bar).UnixMilli()
}

// BarClosed reports whether a bar opened at openMs has fully closed by now.
func BarClosed(openMs int64, bar time.Duration, now time.Time) bool {
	if bar <= 0 {
		return true
	}
	return openMs+bar.Milliseconds() <= now.UnixMilli()
}
