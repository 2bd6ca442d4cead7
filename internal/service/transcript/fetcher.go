package transcript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	apperrors "github.com/mkobayashi/ytingest/internal/errors"
	"github.com/mkobayashi/ytingest/internal/model"
	"github.com/mkobayashi/ytingest/internal/service/youtube"
)

const (
	// attemptsPerFormat is how many times one format is tried before
	// falling through to the next.
	attemptsPerFormat = 3

	// minTranscriptChars is the character count below which a parsed
	// payload is treated as a failed fetch rather than a real transcript.
	minTranscriptChars = 50

	// maxAutoTracks caps how many auto-generated track languages extend
	// the language ladder.
	maxAutoTracks = 5
)

// formatOrder is the fixed format priority for caption downloads.
var formatOrder = []string{
	youtube.FormatSRV3,
	youtube.FormatJSON3,
	youtube.FormatVTT,
	youtube.FormatSRV1,
}

// Fetcher retrieves one video's transcript by walking a language ladder and,
// per language, a format and retry cascade.
type Fetcher struct {
	yt     youtube.Service
	logger *log.Logger

	// timings, shrunk in tests
	attemptBackoff time.Duration
	attemptTimeout time.Duration
	languageDelay  time.Duration
}

// NewFetcher creates a Fetcher with production timings.
func NewFetcher(yt youtube.Service) *Fetcher {
	return &Fetcher{
		yt:             yt,
		logger:         log.WithPrefix("transcript"),
		attemptBackoff: 1 * time.Second,
		attemptTimeout: 15 * time.Second,
		languageDelay:  500 * time.Millisecond,
	}
}

// Fetch resolves a transcript for one video. The result distinguishes three
// outcomes: a transcript was retrieved; caption tracks exist but none could
// be downloaded (a placeholder transcript notes the language); or the video
// has no captions at all.
func (f *Fetcher) Fetch(ctx context.Context, videoID, primaryLanguage string) model.TranscriptResult {
	tracks, err := f.yt.ListCaptionTracks(ctx, videoID)
	if err != nil {
		f.logger.Debug("caption track listing failed", "video_id", videoID, "err", err)
		return model.TranscriptResult{VideoID: videoID}
	}
	if len(tracks) == 0 {
		return model.TranscriptResult{VideoID: videoID}
	}

	languages := candidateLanguages(primaryLanguage, tracks)
	for i, lang := range languages {
		if i > 0 {
			if err := sleepCtx(ctx, f.languageDelay); err != nil {
				return model.TranscriptResult{VideoID: videoID}
			}
		}

		text, ok := f.fetchLanguage(ctx, videoID, lang)
		if ok {
			return model.TranscriptResult{
				VideoID:       videoID,
				Transcript:    text,
				HasTranscript: true,
				Language:      lang,
			}
		}
	}

	// Tracks exist but none were downloadable through the public endpoint.
	fallbackLang := tracks[0].Language
	f.logger.Info("captions listed but not downloadable", "video_id", videoID, "language", fallbackLang)
	return model.TranscriptResult{
		VideoID:       videoID,
		Transcript:    fmt.Sprintf("[captions available in %s - requires manual extraction]", fallbackLang),
		HasTranscript: true,
		Language:      fallbackLang,
	}
}

// fetchLanguage walks the format cascade for one language.
func (f *Fetcher) fetchLanguage(ctx context.Context, videoID, language string) (string, bool) {
	for _, format := range formatOrder {
		for attempt := 1; attempt <= attemptsPerFormat; attempt++ {
			if attempt > 1 {
				if err := sleepCtx(ctx, backoffDelay(attempt, f.attemptBackoff)); err != nil {
					return "", false
				}
			}

			text, retryable := f.fetchOnce(ctx, videoID, language, format)
			if text != "" {
				return text, true
			}
			if !retryable {
				break
			}
		}
	}
	return "", false
}

// fetchOnce performs one bounded download and parse attempt. The second
// return value reports whether retrying the same format is worthwhile.
func (f *Fetcher) fetchOnce(ctx context.Context, videoID, language, format string) (string, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	payload, err := f.yt.FetchCaptionPayload(attemptCtx, videoID, language, format)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeNotFound {
			// this language/format pair does not exist, retries won't help
			return "", false
		}
		f.logger.Debug("caption download failed", "video_id", videoID, "language", language, "format", format, "err", err)
		return "", true
	}

	if payloadUnavailable(payload) {
		return "", false
	}

	// the threshold counts characters, not bytes: multibyte scripts like
	// Chinese sit high on the language ladder and must not pass early
	text := parsePayload(payload, format)
	if utf8.RuneCountInString(text) < minTranscriptChars {
		return "", false
	}
	return text, true
}

// parsePayload dispatches to the parser for the given format. The parsers
// absorb malformed payloads and yield "", which the caller treats as a
// failed attempt.
func parsePayload(payload []byte, format string) string {
	switch format {
	case youtube.FormatJSON3:
		return ParseJSON3(payload)
	case youtube.FormatVTT:
		return ParseVTT(payload)
	default:
		return ParseTimedText(payload)
	}
}

// backoffDelay is the linear pause before a retry: one unit after the first
// failure, two after the second.
func backoffDelay(attempt int, unit time.Duration) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return time.Duration(attempt-1) * unit
}

// payloadUnavailable detects payloads that are error markers rather than
// captions. Matching on the bare word "error" is a known-weak heuristic that
// can reject legitimate captions containing the word early in the payload,
// which is why only the head of the payload is inspected.
func payloadUnavailable(payload []byte) bool {
	head := bytes.TrimSpace(payload)
	if len(head) == 0 {
		return true
	}
	if len(head) > 128 {
		head = head[:128]
	}
	lower := bytes.ToLower(head)
	return bytes.Contains(lower, []byte("error")) || bytes.Contains(lower, []byte("unavailable"))
}

// candidateLanguages builds the language ladder: the video's own language,
// common regional variants, English fallbacks, then up to five auto-generated
// track languages, de-duplicated preserving order.
func candidateLanguages(primary string, tracks []youtube.CaptionTrack) []string {
	ladder := []string{
		primary,
		"zh-TW", "zh-Hant",
		"zh-CN", "zh-Hans",
		"zh",
		"en", "en-US", "en-GB",
	}

	autoCount := 0
	for _, track := range tracks {
		if !track.AutoGenerated {
			continue
		}
		if autoCount >= maxAutoTracks {
			break
		}
		ladder = append(ladder, track.Language)
		autoCount++
	}

	seen := make(map[string]bool, len(ladder))
	out := make([]string, 0, len(ladder))
	for _, lang := range ladder {
		if lang == "" || seen[lang] {
			continue
		}
		seen[lang] = true
		out = append(out, lang)
	}
	return out
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
