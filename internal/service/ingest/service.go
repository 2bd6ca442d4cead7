package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	apperrors "github.com/mkobayashi/ytingest/internal/errors"
	"github.com/mkobayashi/ytingest/internal/model"
	"github.com/mkobayashi/ytingest/internal/repository"
	"github.com/mkobayashi/ytingest/internal/service/youtube"
)

// degradedBatchThreshold is the insert count above which persistence switches
// to the bulk path with minimal returned fields.
const degradedBatchThreshold = 20

// TranscriptCoordinator paces transcript retrieval for a batch of videos.
type TranscriptCoordinator interface {
	FetchAll(ctx context.Context, videos []model.VideoDetail, enabled bool) map[string]model.TranscriptResult
}

// Options controls one sync run.
type Options struct {
	// MaxVideos bounds how many catalog items the run covers. 0 means all.
	MaxVideos int

	// IncludeShorts keeps short-classified videos in the insert set.
	IncludeShorts bool

	// Transcripts enables transcript retrieval for the run.
	Transcripts bool

	// Mode selects full or incremental reconciliation.
	Mode Mode
}

// Result summarizes a completed sync run.
type Result struct {
	RunID           string        `json:"run_id"`
	ChannelID       string        `json:"channel_id"`
	Mode            Mode          `json:"mode"`
	CatalogCount    int           `json:"catalog_count"`
	DetailCount     int           `json:"detail_count"`
	ShortsExcluded  int           `json:"shorts_excluded"`
	AlreadyStored   int           `json:"already_stored"`
	Inserted        int           `json:"inserted"`
	WithTranscripts int           `json:"with_transcripts"`
	Degraded        bool          `json:"degraded"`
	Elapsed         time.Duration `json:"elapsed"`
}

// Failure is the structured outcome of a failed sync run. Kind carries the
// error code of the underlying failure so callers can react without parsing
// the message.
type Failure struct {
	Kind    string        `json:"kind"`
	Message string        `json:"message"`
	Elapsed time.Duration `json:"elapsed"`
	Cause   error         `json:"-"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("sync failed (%s after %s): %s", f.Kind, f.Elapsed.Round(time.Millisecond), f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// Service orchestrates one channel sync run end to end.
type Service struct {
	yt          youtube.Service
	transcripts TranscriptCoordinator
	channels    repository.ChannelRepository
	videos      repository.VideoRepository
	logger      *log.Logger
}

// NewService creates the ingestion orchestrator.
func NewService(yt youtube.Service, transcripts TranscriptCoordinator, channels repository.ChannelRepository, videos repository.VideoRepository) *Service {
	return &Service{
		yt:          yt,
		transcripts: transcripts,
		channels:    channels,
		videos:      videos,
		logger:      log.WithPrefix("ingest"),
	}
}

// Run executes a sync for one stored channel. The channel's scraping status
// is moved to syncing at entry and to completed or error at exit; both writes
// are best-effort and never fail the run themselves.
func (s *Service) Run(ctx context.Context, channelID string, opts Options) (*Result, error) {
	started := time.Now()
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID, "channel_id", channelID)

	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, s.fail(ctx, logger, channelID, started, err)
	}

	s.writeStatus(ctx, logger, channelID, model.ScrapingStatusSyncing, "")
	logger.Info("sync started", "mode", opts.Mode, "max_videos", opts.MaxVideos,
		"include_shorts", opts.IncludeShorts, "transcripts", opts.Transcripts)

	result, err := s.run(ctx, logger, channel, opts)
	if err != nil {
		return nil, s.fail(ctx, logger, channelID, started, err)
	}

	result.RunID = runID
	result.ChannelID = channelID
	result.Mode = opts.Mode
	result.Elapsed = time.Since(started)

	s.writeStatus(ctx, logger, channelID, model.ScrapingStatusCompleted, "")
	logger.Info("sync completed", "inserted", result.Inserted, "degraded", result.Degraded,
		"elapsed", result.Elapsed.Round(time.Millisecond))
	return result, nil
}

// run is the pipeline proper: catalog, details, transcripts, classification,
// short filter, reconciliation, persistence.
func (s *Service) run(ctx context.Context, logger *log.Logger, channel *model.Channel, opts Options) (*Result, error) {
	result := &Result{}

	catalog, err := s.yt.FetchCatalog(ctx, channel.UploadsPlaylistID, opts.MaxVideos)
	if err != nil {
		return nil, err
	}
	result.CatalogCount = len(catalog)
	if len(catalog) == 0 {
		logger.Info("catalog is empty, nothing to sync")
		return result, nil
	}

	videoIDs := make([]string, 0, len(catalog))
	for _, item := range catalog {
		videoIDs = append(videoIDs, item.VideoID)
	}

	details, err := s.yt.FetchVideoDetails(ctx, videoIDs)
	if err != nil {
		return nil, err
	}
	result.DetailCount = len(details)

	transcripts := s.transcripts.FetchAll(ctx, details, opts.Transcripts)

	// merge detail, transcript and classification per video
	candidates := make([]*model.Video, 0, len(details))
	for _, detail := range details {
		classification := Classify(detail)
		if classification == model.ClassificationShort && !opts.IncludeShorts {
			result.ShortsExcluded++
			continue
		}

		transcript := transcripts[detail.VideoID]
		if transcript.HasTranscript {
			result.WithTranscripts++
		}

		candidates = append(candidates, &model.Video{
			ChannelID:       channel.ID,
			VideoID:         detail.VideoID,
			Title:           detail.Title,
			Description:     detail.Description,
			ThumbnailURL:    detail.ThumbnailURL,
			Duration:        detail.Duration,
			PublishedAt:     detail.PublishedAt,
			ViewCount:       detail.ViewCount,
			LikeCount:       detail.LikeCount,
			CommentCount:    detail.CommentCount,
			Tags:            detail.Tags,
			CategoryID:      detail.CategoryID,
			DefaultLanguage: detail.DefaultLanguage,
			Classification:  classification,
			Transcript:      transcript.Transcript,
			HasTranscript:   transcript.HasTranscript,
		})
	}

	toInsert, err := s.reconcile(ctx, logger, channel.ID, opts.Mode, candidates, result)
	if err != nil {
		return nil, err
	}
	if len(toInsert) == 0 {
		logger.Info("nothing new to insert")
		return result, nil
	}

	inserted, degraded, err := s.persist(ctx, logger, channel.ID, toInsert)
	if err != nil {
		return nil, err
	}
	result.Inserted = inserted
	result.Degraded = degraded
	return result, nil
}

// reconcile applies the sync mode: full clears the channel first and keeps
// every candidate, incremental drops candidates already stored.
func (s *Service) reconcile(ctx context.Context, logger *log.Logger, channelID string, mode Mode, candidates []*model.Video, result *Result) ([]*model.Video, error) {
	if mode == ModeFull {
		if err := s.videos.DeleteAllForChannel(ctx, channelID); err != nil {
			return nil, err
		}
		logger.Info("cleared stored videos for full sync")
		return candidates, nil
	}

	existing, err := s.videos.ExistingVideoIDs(ctx, channelID)
	if err != nil {
		return nil, err
	}

	kept := planInserts(mode, existing, candidates)
	result.AlreadyStored = len(candidates) - len(kept)
	return kept, nil
}

// persist writes the insert set. Batches over the threshold use the bulk
// path with minimal returned fields and then signal a metrics recompute; the
// recompute signal failing is logged, never fatal.
func (s *Service) persist(ctx context.Context, logger *log.Logger, channelID string, videos []*model.Video) (int, bool, error) {
	if len(videos) <= degradedBatchThreshold {
		inserted, err := s.videos.InsertBatch(ctx, videos)
		if err != nil {
			return 0, false, err
		}
		return len(inserted), false, nil
	}

	count, err := s.videos.InsertBatchMinimal(ctx, videos)
	if err != nil {
		return 0, true, err
	}
	logger.Info("large batch inserted via bulk path", "count", count)

	if err := s.videos.TriggerMetricsRecompute(ctx, channelID); err != nil {
		logger.Warn("metrics recompute trigger failed, re-run manually", "err", err)
	}
	return int(count), true, nil
}

// fail records the error on the channel (best-effort) and wraps it in the
// structured failure payload.
func (s *Service) fail(ctx context.Context, logger *log.Logger, channelID string, started time.Time, err error) error {
	failure := &Failure{
		Kind:    apperrors.CodeOf(err),
		Message: err.Error(),
		Elapsed: time.Since(started),
		Cause:   err,
	}

	s.writeStatus(ctx, logger, channelID, model.ScrapingStatusError, failure.Message)
	logger.Error("sync failed", "kind", failure.Kind, "err", err,
		"elapsed", failure.Elapsed.Round(time.Millisecond))
	return failure
}

// writeStatus is the best-effort channel status transition.
func (s *Service) writeStatus(ctx context.Context, logger *log.Logger, channelID, status, errorMessage string) {
	if err := s.channels.UpdateScrapingStatus(ctx, channelID, status, errorMessage); err != nil {
		logger.Warn("status write failed", "status", status, "err", err)
	}
}
