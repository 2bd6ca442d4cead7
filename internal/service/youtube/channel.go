package youtube

import (
	"context"
	"net/url"
	"strings"

	apperrors "github.com/mkobayashi/ytingest/internal/errors"
	"github.com/mkobayashi/ytingest/internal/model"
)

// channelListResponse is the channels.list response shape we consume.
type channelListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// FetchChannelInfo resolves a channel ID (UC...) or @handle to channel
// metadata including its uploads playlist.
func (s *service) FetchChannelInfo(ctx context.Context, channelRef string) (*model.Channel, error) {
	if channelRef == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "channel reference is required")
	}

	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	switch {
	case strings.HasPrefix(channelRef, "@"):
		params.Set("forHandle", channelRef)
	case strings.HasPrefix(channelRef, "UC"):
		params.Set("id", channelRef)
	default:
		return nil, apperrors.New(apperrors.CodeInvalidArg, "invalid channel reference (expected UC... id or @handle)")
	}

	var resp channelListResponse
	if err := s.getJSON(ctx, "channels", params, &resp); err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 {
		return nil, apperrors.New(apperrors.CodeNotFound, "channel not found: "+channelRef)
	}

	item := resp.Items[0]
	if item.ContentDetails.RelatedPlaylists.Uploads == "" {
		return nil, apperrors.New(apperrors.CodeNotFound, "channel has no uploads playlist: "+channelRef)
	}

	return &model.Channel{
		ID:                item.ID,
		Name:              item.Snippet.Title,
		UploadsPlaylistID: item.ContentDetails.RelatedPlaylists.Uploads,
		ScrapingStatus:    model.ScrapingStatusIdle,
	}, nil
}
