// Package duration converts between the ISO-8601 duration codes returned by
// the YouTube Data API (e.g. "PT1H30M15S") and plain seconds.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
)

var isoDurationRegex = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// Seconds parses an ISO-8601 duration code of the form PT[nH][nM][nS] into
// total seconds. Missing components default to 0. Malformed input yields 0,
// never an error.
func Seconds(code string) int {
	m := isoDurationRegex.FindStringSubmatch(code)
	if m == nil {
		return 0
	}

	hours := atoiOrZero(m[1])
	minutes := atoiOrZero(m[2])
	seconds := atoiOrZero(m[3])

	return hours*3600 + minutes*60 + seconds
}

// Format renders seconds as display text: "H:MM:SS" when hours > 0,
// otherwise "M:SS".
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
