package transcript

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mkobayashi/ytingest/internal/errors"
	"github.com/mkobayashi/ytingest/internal/model"
	"github.com/mkobayashi/ytingest/internal/service/youtube"
)

// mockYouTubeService mocks the remote video catalog for fetcher tests.
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

// newTestFetcher builds a Fetcher with all delays collapsed for tests.
func newTestFetcher(yt youtube.Service) *Fetcher {
	return &Fetcher{
		yt:             yt,
		logger:         log.WithPrefix("transcript"),
		attemptBackoff: 0,
		attemptTimeout: time.Second,
		languageDelay:  0,
	}
}

// longTranscriptXML returns an srv1 payload whose parsed text clears the
// minimum transcript length.
func longTranscriptXML() []byte {
	line := strings.Repeat("transcript words here ", 5)
	return []byte(`<transcript><text start="0">` + line + `</text></transcript>`)
}

func TestFetch_FirstFormatSucceeds(t *testing.T) {
	yt := new(mockYouTubeService)
	yt.On("ListCaptionTracks", mock.Anything, "vid001").
		Return([]youtube.CaptionTrack{{Language: "en"}}, nil)
	yt.On("FetchCaptionPayload", mock.Anything, "vid001", "en", youtube.FormatSRV3).
		Return(longTranscriptXML(), nil)

	f := newTestFetcher(yt)

	result := f.Fetch(context.Background(), "vid001", "en")
	assert.True(t, result.HasTranscript)
	assert.Equal(t, "en", result.Language)
	assert.Contains(t, result.Transcript, "transcript words here")
	yt.AssertExpectations(t)
}

func TestFetch_ShortPayloadFallsThroughToNextFormat(t *testing.T) {
	yt := new(mockYouTubeService)
	yt.On("ListCaptionTracks", mock.Anything, "vid001").
		Return([]youtube.CaptionTrack{{Language: "en"}}, nil)
	// too short to count as a transcript
	yt.On("FetchCaptionPayload", mock.Anything, "vid001", "en", youtube.FormatSRV3).
		Return([]byte(`<transcript><text>hi</text></transcript>`), nil).Once()
	longLine := strings.Repeat("plenty of caption text ", 5)
	yt.On("FetchCaptionPayload", mock.Anything, "vid001", "en", youtube.FormatJSON3).
		Return([]byte(`{"events":[{"segs":[{"utf8":"`+longLine+`"}]}]}`), nil).Once()

	f := newTestFetcher(yt)

	result := f.Fetch(context.Background(), "vid001", "en")
	assert.True(t, result.HasTranscript)
	assert.Contains(t, result.Transcript, "plenty of caption text")
	yt.AssertExpectations(t)
}

func TestFetch_NotFoundSkipsRetriesForFormat(t *testing.T) {
	yt := new(mockYouTubeService)
	yt.On("ListCaptionTracks", mock.Anything, "vid001").
		Return([]youtube.CaptionTrack{{Language: "en"}}, nil)
	yt.On("FetchCaptionPayload", mock.Anything, "vid001", "en", youtube.FormatSRV3).
		Return(nil, apperrors.New(apperrors.CodeNotFound, "no captions")).Once()
	yt.On("FetchCaptionPayload", mock.Anything, "vid001", "en", youtube.FormatJSON3).
		Return(longJSON3(), nil).Once()

	f := newTestFetcher(yt)

	result := f.Fetch(context.Background(), "vid001", "en")
	assert.True(t, result.HasTranscript)
	yt.AssertExpectations(t)
	yt.AssertNumberOfCalls(t, "FetchCaptionPayload", 2)
}

func longJSON3() []byte {
	line := strings.Repeat("segmented caption text ", 5)
	return []byte(`{"events":[{"segs":[{"utf8":"` + line + `"}]}]}`)
}

func TestFetch_TransientErrorsRetryWithinFormat(t *testing.T) {
	yt := new(mockYouTubeService)
	yt.On("ListCaptionTracks", mock.Anything, "vid001").
		Return([]youtube.CaptionTrack{{Language: "en"}}, nil)
	yt.On("FetchCaptionPayload", mock.Anything, "vid001", "en", youtube.FormatSRV3).
		Return(nil, apperrors.New(apperrors.CodeExternal, "rate limited by timedtext endpoint")).Twice()
	yt.On("FetchCaptionPayload", mock.Anything, "vid001", "en", youtube.FormatSRV3).
		Return(longTranscriptXML(), nil).Once()

	f := newTestFetcher(yt)

	result := f.Fetch(context.Background(), "vid001", "en")
	assert.True(t, result.HasTranscript)
	yt.AssertNumberOfCalls(t, "FetchCaptionPayload", 3)
}

func TestFetch_UnavailableMarkerIsNotATranscript(t *testing.T) {
	yt := new(mockYouTubeService)
	yt.On("ListCaptionTracks", mock.Anything, "vid001").
		Return([]youtube.CaptionTrack{{Language: "ja"}}, nil)
	yt.On("FetchCaptionPayload", mock.Anything, "vid001", mock.Anything, mock.Anything).
		Return([]byte(`<error>captions are unavailable for this video</error>`), nil)

	f := newTestFetcher(yt)

	result := f.Fetch(context.Background(), "vid001", "")
	assert.True(t, result.HasTranscript, "tracks exist, so the placeholder outcome applies")
	assert.Contains(t, result.Transcript, "requires manual extraction")
	assert.Equal(t, "ja", result.Language)
}

func TestFetch_ExhaustionYieldsPlaceholder(t *testing.T) {
	yt := new(mockYouTubeService)
	yt.On("ListCaptionTracks", mock.Anything, "vid001").
		Return([]youtube.CaptionTrack{{Language: "ja"}, {Language: "en", AutoGenerated: true}}, nil)
	yt.On("FetchCaptionPayload", mock.Anything, "vid001", mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.CodeNotFound, "no captions"))

	f := newTestFetcher(yt)

	result := f.Fetch(context.Background(), "vid001", "ja")
	require.True(t, result.HasTranscript)
	assert.Equal(t, "[captions available in ja - requires manual extraction]", result.Transcript)
	assert.Equal(t, "ja", result.Language)
}

func TestFetch_MultibyteShortCaptionCountsCharactersNotBytes(t *testing.T) {
	// 20 Chinese characters are 60 bytes but still under the 50-character
	// minimum, so every attempt fails and the placeholder outcome applies.
	line := strings.Repeat("字幕内容短", 4)
	payload := []byte(`{"events":[{"segs":[{"utf8":"` + line + `"}]}]}`)

	yt := new(mockYouTubeService)
	yt.On("ListCaptionTracks", mock.Anything, "vid001").
		Return([]youtube.CaptionTrack{{Language: "zh"}}, nil)
	yt.On("FetchCaptionPayload", mock.Anything, "vid001", mock.Anything, mock.Anything).
		Return(payload, nil)

	f := newTestFetcher(yt)

	result := f.Fetch(context.Background(), "vid001", "zh")
	assert.True(t, result.HasTranscript)
	assert.Contains(t, result.Transcript, "requires manual extraction")
}

func TestBackoffDelay(t *testing.T) {
	assert.Equal(t, time.Duration(0), backoffDelay(1, time.Second))
	assert.Equal(t, 1*time.Second, backoffDelay(2, time.Second))
	assert.Equal(t, 2*time.Second, backoffDelay(3, time.Second))
}

func TestFetch_NoTracksMeansNoTranscript(t *testing.T) {
	yt := new(mockYouTubeService)
	yt.On("ListCaptionTracks", mock.Anything, "vid001").
		Return([]youtube.CaptionTrack{}, nil)

	f := newTestFetcher(yt)

	result := f.Fetch(context.Background(), "vid001", "en")
	assert.False(t, result.HasTranscript)
	assert.Empty(t, result.Transcript)
	yt.AssertNotCalled(t, "FetchCaptionPayload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFetch_TrackListingFailureMeansNoTranscript(t *testing.T) {
	yt := new(mockYouTubeService)
	yt.On("ListCaptionTracks", mock.Anything, "vid001").
		Return(nil, apperrors.New(apperrors.CodeExternal, "captions API down"))

	f := newTestFetcher(yt)

	result := f.Fetch(context.Background(), "vid001", "en")
	assert.False(t, result.HasTranscript)
	assert.Empty(t, result.Transcript)
}

func TestCandidateLanguages(t *testing.T) {
	tracks := []youtube.CaptionTrack{
		{Language: "en", AutoGenerated: true},
		{Language: "ko", AutoGenerated: true},
		{Language: "fr"},
		{Language: "de", AutoGenerated: true},
		{Language: "es", AutoGenerated: true},
		{Language: "pt", AutoGenerated: true},
		{Language: "it", AutoGenerated: true}, // sixth auto track, past the cap
	}

	got := candidateLanguages("ja", tracks)

	assert.Equal(t, []string{
		"ja",
		"zh-TW", "zh-Hant", "zh-CN", "zh-Hans", "zh",
		"en", "en-US", "en-GB",
		"ko", "de", "es", "pt",
	}, got)
	assert.NotContains(t, got, "it")
	assert.NotContains(t, got, "fr", "manual tracks do not extend the ladder")
}

func TestCandidateLanguages_EmptyPrimaryIsDropped(t *testing.T) {
	got := candidateLanguages("", nil)
	assert.Equal(t, []string{"zh-TW", "zh-Hant", "zh-CN", "zh-Hans", "zh", "en", "en-US", "en-GB"}, got)
}
