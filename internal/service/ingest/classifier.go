package ingest

import (
	"strings"

	"github.com/mkobayashi/ytingest/internal/duration"
	"github.com/mkobayashi/ytingest/internal/model"
)

// shortMaxSeconds is the duration ceiling below which a video counts as a
// short. Durations of exactly this length or longer are regular.
const shortMaxSeconds = 180

// Classify derives a video's classification from its metadata. Live state
// wins over everything, the #shorts marker wins over duration, and an
// unparseable or zero duration never makes a video a short.
func Classify(detail model.VideoDetail) string {
	switch detail.LiveBroadcast {
	case "live", "upcoming":
		return model.ClassificationLive
	}

	if hasShortsMarker(detail.Title) || hasShortsMarker(detail.Description) {
		return model.ClassificationShort
	}

	seconds := duration.Seconds(detail.Duration)
	if seconds > 0 && seconds < shortMaxSeconds {
		return model.ClassificationShort
	}

	return model.ClassificationRegular
}

func hasShortsMarker(s string) bool {
	return strings.Contains(strings.ToLower(s), "#shorts")
}
