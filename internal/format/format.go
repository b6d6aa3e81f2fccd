package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Timestamp formats a cue time as HH:MM:SS.mmm (WebVTT).
// Negative durations render as zero.
func Timestamp(d time.Duration) string {
	return timestamp(d, '.')
}

// SRTTimestamp formats a cue time as HH:MM:SS,mmm (SubRip).
func SRTTimestamp(d time.Duration) string {
	return timestamp(d, ',')
}

func timestamp(d time.Duration, sep byte) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	ms := (d % time.Second) / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}

// Duration formats a duration as HH:MM:SS or MM:SS.
func Duration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// DurationHuman formats a duration for human display.
// Examples: "2h", "30m", "1h30m", "45s"
func DurationHuman(d time.Duration) string {
	if d >= time.Hour {
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes > 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm", d/time.Minute)
	}
	return fmt.Sprintf("%ds", d/time.Second)
}

// Size formats a size in bytes for human display (IEC units).
func Size(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// Tokens formats a token count with thousands separators: 12345 -> "12,345".
func Tokens(n int) string {
	return humanize.Comma(int64(n))
}
