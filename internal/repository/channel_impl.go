package repository

import (
	"context"
	"errors"

	apperrors "github.com/mkobayashi/ytingest/internal/errors"
	"github.com/mkobayashi/ytingest/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool interface for abstracting pgx connection pool
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// channelRepository implements ChannelRepository using PostgreSQL
type channelRepository struct {
	pool Pool
}

// NewChannelRepository creates a new instance of ChannelRepository
func NewChannelRepository(pool Pool) ChannelRepository {
	return &channelRepository{
		pool: pool,
	}
}

// Create creates a new channel record
func (r *channelRepository) Create(ctx context.Context, channel *model.Channel) error {
	status := channel.ScrapingStatus
	if status == "" {
		status = model.ScrapingStatusIdle
	}
	sql := "INSERT INTO channels (id, name, uploads_playlist_id, scraping_status) VALUES ($1, $2, $3, $4)"
	_, err := r.pool.Exec(ctx, sql, channel.ID, channel.Name, channel.UploadsPlaylistID, status)
	if err != nil {
		return handlePostgreSQLError(err, "failed to create channel")
	}
	return nil
}

// GetByID retrieves a channel by its ID
func (r *channelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	sql := "SELECT id, name, uploads_playlist_id, scraping_status, COALESCE(last_error, ''), last_scraped_at FROM channels WHERE id = $1"
	row := r.pool.QueryRow(ctx, sql, id)

	var channel model.Channel
	err := row.Scan(&channel.ID, &channel.Name, &channel.UploadsPlaylistID, &channel.ScrapingStatus, &channel.LastError, &channel.LastScrapedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "channel not found")
		}
		return nil, handlePostgreSQLError(err, "failed to get channel")
	}

	return &channel, nil
}

// UpdateScrapingStatus records a sync state transition. last_scraped_at is
// stamped on every transition so both sync entry and exit are visible.
func (r *channelRepository) UpdateScrapingStatus(ctx context.Context, id, status, errorMessage string) error {
	sql := "UPDATE channels SET scraping_status = $2, last_error = NULLIF($3, ''), last_scraped_at = NOW() WHERE id = $1"
	tag, err := r.pool.Exec(ctx, sql, id, status, errorMessage)
	if err != nil {
		return handlePostgreSQLError(err, "failed to update channel scraping status")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "channel not found")
	}
	return nil
}

// Delete deletes a channel by its ID
func (r *channelRepository) Delete(ctx context.Context, id string) error {
	sql := "DELETE FROM channels WHERE id = $1"
	_, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return handlePostgreSQLError(err, "failed to delete channel")
	}
	return nil
}

// List retrieves channels with pagination
func (r *channelRepository) List(ctx context.Context, limit, offset int) ([]*model.Channel, error) {
	sql := "SELECT id, name, uploads_playlist_id, scraping_status, COALESCE(last_error, ''), last_scraped_at FROM channels ORDER BY id LIMIT $1 OFFSET $2"
	rows, err := r.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to list channels")
	}
	defer rows.Close()

	channels := []*model.Channel{}
	for rows.Next() {
		var channel model.Channel
		err := rows.Scan(&channel.ID, &channel.Name, &channel.UploadsPlaylistID, &channel.ScrapingStatus, &channel.LastError, &channel.LastScrapedAt)
		if err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan channel row")
		}
		channels = append(channels, &channel)
	}

	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate channel rows")
	}

	return channels, nil
}
