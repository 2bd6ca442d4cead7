package youtube

import (
	"context"

	"github.com/mkobayashi/ytingest/internal/model"
)

// Service is the interface for the remote video catalog: channel resolution,
// paginated catalog listing, batched detail lookups and caption access.
type Service interface {
	// FetchChannelInfo resolves a channel ID or @handle to channel metadata
	// including the uploads playlist that roots the channel's catalog.
	FetchChannelInfo(ctx context.Context, channelRef string) (*model.Channel, error)

	// FetchCatalog walks the uploads playlist until maxItems stubs are
	// collected or the catalog ends. maxItems 0 means all available.
	FetchCatalog(ctx context.Context, uploadsPlaylistID string, maxItems int) ([]model.CatalogItem, error)

	// FetchVideoDetails retrieves enriched metadata for the given video ids
	// in chunks of at most 50, strictly sequentially. Chunks that fail for
	// reasons other than quota exhaustion are skipped; their videos are
	// absent from the result.
	FetchVideoDetails(ctx context.Context, videoIDs []string) ([]model.VideoDetail, error)

	// ListCaptionTracks lists the caption tracks available for a video.
	ListCaptionTracks(ctx context.Context, videoID string) ([]CaptionTrack, error)

	// FetchCaptionPayload downloads one caption track payload in the given
	// format (srv3, json3, vtt or srv1).
	FetchCaptionPayload(ctx context.Context, videoID, language, format string) ([]byte, error)
}

// CaptionTrack describes one caption track attached to a video.
type CaptionTrack struct {
	Language      string `json:"language"`
	Name          string `json:"name,omitempty"`
	AutoGenerated bool   `json:"auto_generated"`
}

// Caption payload formats, in the fetcher's fixed priority order.
const (
	FormatSRV3  = "srv3"  // timed XML, v3
	FormatJSON3 = "json3" // segmented JSON
	FormatVTT   = "vtt"   // WebVTT
	FormatSRV1  = "srv1"  // timed XML, v1
)
