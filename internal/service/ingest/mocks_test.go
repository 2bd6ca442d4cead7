package ingest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mkobayashi/ytingest/internal/model"
	"github.com/mkobayashi/ytingest/internal/service/youtube"
)

type mockYouTubeService struct {
	mock.Mock
}

func (m *mockYouTubeService) FetchChannelInfo(ctx context.Context, channelRef string) (*model.Channel, error) {
	args := m.Called(ctx, channelRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Channel), args.Error(1)
}

func (m *mockYouTubeService) FetchCatalog(ctx context.Context, uploadsPlaylistID string, maxItems int) ([]model.CatalogItem, error) {
	args := m.Called(ctx, uploadsPlaylistID, maxItems)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CatalogItem), args.Error(1)
}

func (m *mockYouTubeService) FetchVideoDetails(ctx context.Context, videoIDs []string) ([]model.VideoDetail, error) {
	args := m.Called(ctx, videoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VideoDetail), args.Error(1)
}

func (m *mockYouTubeService) ListCaptionTracks(ctx context.Context, videoID string) ([]youtube.CaptionTrack, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]youtube.CaptionTrack), args.Error(1)
}

func (m *mockYouTubeService) FetchCaptionPayload(ctx context.Context, videoID, language, format string) ([]byte, error) {
	args := m.Called(ctx, videoID, language, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockCoordinator struct {
	mock.Mock
}

func (m *mockCoordinator) FetchAll(ctx context.Context, videos []model.VideoDetail, enabled bool) map[string]model.TranscriptResult {
	args := m.Called(ctx, videos, enabled)
	return args.Get(0).(map[string]model.TranscriptResult)
}

type mockChannelRepository struct {
	mock.Mock
}

func (m *mockChannelRepository) Create(ctx context.Context, channel *model.Channel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *mockChannelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Channel), args.Error(1)
}

func (m *mockChannelRepository) UpdateScrapingStatus(ctx context.Context, id, status, errorMessage string) error {
	args := m.Called(ctx, id, status, errorMessage)
	return args.Error(0)
}

func (m *mockChannelRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockChannelRepository) List(ctx context.Context, limit, offset int) ([]*model.Channel, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Channel), args.Error(1)
}

type mockVideoRepository struct {
	mock.Mock
}

func (m *mockVideoRepository) InsertBatch(ctx context.Context, videos []*model.Video) ([]*model.Video, error) {
	args := m.Called(ctx, videos)
	if rf, ok := args.Get(0).(func(context.Context, []*model.Video) []*model.Video); ok {
		return rf(ctx, videos), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Video), args.Error(1)
}

func (m *mockVideoRepository) InsertBatchMinimal(ctx context.Context, videos []*model.Video) (int64, error) {
	args := m.Called(ctx, videos)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockVideoRepository) ExistingVideoIDs(ctx context.Context, channelID string) (map[string]bool, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *mockVideoRepository) DeleteAllForChannel(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *mockVideoRepository) GetByChannelID(ctx context.Context, channelID string, limit, offset int) ([]*model.Video, error) {
	args := m.Called(ctx, channelID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Video), args.Error(1)
}

func (m *mockVideoRepository) TriggerMetricsRecompute(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}
