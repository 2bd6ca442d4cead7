package repository

import (
	"context"

	"github.com/mkobayashi/ytingest/internal/model"
)

// VideoRepository defines operations for ingested video persistence
type VideoRepository interface {
	// InsertBatch inserts videos one statement at a time within a
	// transaction, returning the inserted rows with their assigned ids.
	InsertBatch(ctx context.Context, videos []*model.Video) ([]*model.Video, error)

	// InsertBatchMinimal is the degraded path for large batches: bulk insert
	// via COPY FROM with no returned fields, only the inserted count.
	InsertBatchMinimal(ctx context.Context, videos []*model.Video) (int64, error)

	// ExistingVideoIDs returns the set of external video ids already stored
	// for the channel.
	ExistingVideoIDs(ctx context.Context, channelID string) (map[string]bool, error)

	// DeleteAllForChannel removes every stored video for the channel.
	DeleteAllForChannel(ctx context.Context, channelID string) error

	// GetByChannelID retrieves videos by channel ID with pagination
	GetByChannelID(ctx context.Context, channelID string, limit, offset int) ([]*model.Video, error)

	// TriggerMetricsRecompute asks the database to recompute performance
	// metrics for the channel's videos. The pipeline never computes scores
	// itself.
	TriggerMetricsRecompute(ctx context.Context, channelID string) error
}
