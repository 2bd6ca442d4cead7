package repository

import (
	"context"

	"github.com/mkobayashi/ytingest/internal/model"
)

// ChannelRepository defines operations for Channel persistence
type ChannelRepository interface {
	// Create creates a new channel record
	Create(ctx context.Context, channel *model.Channel) error

	// GetByID retrieves a channel by its ID
	GetByID(ctx context.Context, id string) (*model.Channel, error)

	// UpdateScrapingStatus records the sync state transition for a channel.
	// errorMessage is stored only for the error status and cleared otherwise.
	UpdateScrapingStatus(ctx context.Context, id, status, errorMessage string) error

	// Delete deletes a channel by its ID
	Delete(ctx context.Context, id string) error

	// List retrieves channels with pagination
	List(ctx context.Context, limit, offset int) ([]*model.Channel, error)
}
