package captions

import (
	"fmt"
	"math"
	"strings"
)

// FormatTimestamp renders seconds as HH:MM:SS,mmm using floor arithmetic.
// NaN, infinite and negative values render as zero.
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	// The epsilon absorbs binary representation error such as 1.001*1000 = 1000.9999.
	total := int64(math.Floor(seconds*1000 + 1e-6))
	hours := total / 3_600_000
	total %= 3_600_000
	minutes := total / 60_000
	total %= 60_000
	secs := total / 1_000
	millis := total % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// FormatSRT serializes cues. Each cue is an index line, a time range, the
// text and a blank separator line. No cues yields an empty string.
func FormatSRT(cues []Cue) string {
	var b strings.Builder
	for _, cue := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			cue.Index,
			FormatTimestamp(cue.Start),
			FormatTimestamp(cue.End),
			cue.Text,
		)
	}
	return b.String()
}
