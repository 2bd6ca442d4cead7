package repository

import (
	"context"

	apperrors "github.com/mkobayashi/ytingest/internal/errors"
	"github.com/mkobayashi/ytingest/internal/model"
	"github.com/jackc/pgx/v5"
)

// videoRepository implements VideoRepository using PostgreSQL
type videoRepository struct {
	pool Pool
}

// NewVideoRepository creates a new instance of VideoRepository
func NewVideoRepository(pool Pool) VideoRepository {
	return &videoRepository{
		pool: pool,
	}
}

const videoColumns = "channel_id, video_id, title, description, thumbnail_url, duration, published_at, view_count, like_count, comment_count, tags, category_id, default_language, classification, transcript, has_transcript"

// InsertBatch inserts videos within a transaction, one INSERT ... RETURNING
// per row, so callers get back the assigned ids and timestamps.
func (r *videoRepository) InsertBatch(ctx context.Context, videos []*model.Video) ([]*model.Video, error) {
	if len(videos) == 0 {
		return []*model.Video{}, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to begin insert transaction")
	}
	defer tx.Rollback(ctx)

	sql := "INSERT INTO videos (" + videoColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id, created_at"

	inserted := make([]*model.Video, 0, len(videos))
	for _, v := range videos {
		row := tx.QueryRow(ctx, sql,
			v.ChannelID, v.VideoID, v.Title, v.Description, v.ThumbnailURL,
			v.Duration, v.PublishedAt, v.ViewCount, v.LikeCount, v.CommentCount,
			v.Tags, v.CategoryID, v.DefaultLanguage, v.Classification,
			v.Transcript, v.HasTranscript)

		out := *v
		if err := row.Scan(&out.ID, &out.CreatedAt); err != nil {
			return nil, handlePostgreSQLError(err, "failed to insert video")
		}
		inserted = append(inserted, &out)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, handlePostgreSQLError(err, "failed to commit insert transaction")
	}

	return inserted, nil
}

// InsertBatchMinimal bulk inserts via COPY FROM. COPY cannot return generated
// columns, which is exactly the degraded contract: count only.
func (r *videoRepository) InsertBatchMinimal(ctx context.Context, videos []*model.Video) (int64, error) {
	if len(videos) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(videos))
	for i, v := range videos {
		rows[i] = []any{
			v.ChannelID, v.VideoID, v.Title, v.Description, v.ThumbnailURL,
			v.Duration, v.PublishedAt, v.ViewCount, v.LikeCount, v.CommentCount,
			v.Tags, v.CategoryID, v.DefaultLanguage, v.Classification,
			v.Transcript, v.HasTranscript,
		}
	}

	tableName := pgx.Identifier{"videos"}
	columnNames := []string{
		"channel_id", "video_id", "title", "description", "thumbnail_url",
		"duration", "published_at", "view_count", "like_count", "comment_count",
		"tags", "category_id", "default_language", "classification",
		"transcript", "has_transcript",
	}
	copyFromSource := pgx.CopyFromRows(rows)

	count, err := r.pool.CopyFrom(ctx, tableName, columnNames, copyFromSource)
	if err != nil {
		return 0, handlePostgreSQLError(err, "failed to insert videos in batch using COPY FROM")
	}

	return count, nil
}

// ExistingVideoIDs returns the external video ids already stored for the channel
func (r *videoRepository) ExistingVideoIDs(ctx context.Context, channelID string) (map[string]bool, error) {
	sql := "SELECT video_id FROM videos WHERE channel_id = $1"
	rows, err := r.pool.Query(ctx, sql, channelID)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to get existing video IDs")
	}
	defer rows.Close()

	existingIDs := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan video ID")
		}
		existingIDs[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate existing video IDs")
	}

	return existingIDs, nil
}

// DeleteAllForChannel removes every stored video for the channel
func (r *videoRepository) DeleteAllForChannel(ctx context.Context, channelID string) error {
	sql := "DELETE FROM videos WHERE channel_id = $1"
	_, err := r.pool.Exec(ctx, sql, channelID)
	if err != nil {
		return handlePostgreSQLError(err, "failed to delete channel videos")
	}
	return nil
}

// GetByChannelID retrieves videos by channel ID with pagination
func (r *videoRepository) GetByChannelID(ctx context.Context, channelID string, limit, offset int) ([]*model.Video, error) {
	sql := "SELECT id, " + videoColumns + ", created_at FROM videos WHERE channel_id = $1 ORDER BY published_at DESC LIMIT $2 OFFSET $3"
	rows, err := r.pool.Query(ctx, sql, channelID, limit, offset)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to get videos by channel ID")
	}
	defer rows.Close()

	videos := []*model.Video{}
	for rows.Next() {
		var v model.Video
		err := rows.Scan(&v.ID, &v.ChannelID, &v.VideoID, &v.Title, &v.Description,
			&v.ThumbnailURL, &v.Duration, &v.PublishedAt, &v.ViewCount, &v.LikeCount,
			&v.CommentCount, &v.Tags, &v.CategoryID, &v.DefaultLanguage,
			&v.Classification, &v.Transcript, &v.HasTranscript, &v.CreatedAt)
		if err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan video row")
		}
		videos = append(videos, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate video rows")
	}

	return videos, nil
}

// TriggerMetricsRecompute calls the recompute function installed by the
// migrations. Scores and tiers are produced entirely inside the database.
func (r *videoRepository) TriggerMetricsRecompute(ctx context.Context, channelID string) error {
	sql := "SELECT recompute_channel_metrics($1)"
	_, err := r.pool.Exec(ctx, sql, channelID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, "failed to trigger metrics recompute")
	}
	return nil
}
