package transcript

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkobayashi/ytingest/internal/model"
)

// VideoFetcher resolves one video's transcript.
type VideoFetcher interface {
	Fetch(ctx context.Context, videoID, primaryLanguage string) model.TranscriptResult
}

// Coordinator paces transcript fetches for a batch of videos. Work is
// strictly sequential: groups of groupSize videos with a short pause between
// videos and a longer pause between groups, keeping the request rate low
// enough to avoid throttling.
type Coordinator struct {
	fetcher VideoFetcher
	logger  *log.Logger

	groupSize  int
	itemDelay  time.Duration
	groupDelay time.Duration
}

// NewCoordinator creates a Coordinator with production pacing.
func NewCoordinator(fetcher VideoFetcher) *Coordinator {
	return &Coordinator{
		fetcher:    fetcher,
		logger:     log.WithPrefix("transcript"),
		groupSize:  3,
		itemDelay:  300 * time.Millisecond,
		groupDelay: 2 * time.Second,
	}
}

// FetchAll resolves transcripts for the given videos, keyed by video ID.
// When enabled is false no network work happens and every video is reported
// as having no transcript. Cancellation stops the walk; videos not yet
// processed are absent from the result.
func (c *Coordinator) FetchAll(ctx context.Context, videos []model.VideoDetail, enabled bool) map[string]model.TranscriptResult {
	results := make(map[string]model.TranscriptResult, len(videos))

	if !enabled {
		for _, video := range videos {
			results[video.VideoID] = model.TranscriptResult{VideoID: video.VideoID}
		}
		return results
	}

	for i, video := range videos {
		if i > 0 {
			delay := c.itemDelay
			if i%c.groupSize == 0 {
				delay = c.groupDelay
			}
			if err := sleepCtx(ctx, delay); err != nil {
				c.logger.Warn("transcript batch cancelled", "processed", i, "total", len(videos))
				return results
			}
		}

		result := c.fetcher.Fetch(ctx, video.VideoID, video.DefaultLanguage)
		results[video.VideoID] = result

		if (i+1)%c.groupSize == 0 || i == len(videos)-1 {
			c.logger.Info("transcript progress", "processed", i+1, "total", len(videos))
		}
	}

	return results
}
