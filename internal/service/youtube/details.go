package youtube

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/mkobayashi/ytingest/internal/errors"
	"github.com/mkobayashi/ytingest/internal/model"
)

// detailChunkSize is the videos.list id limit per request.
const detailChunkSize = 50

// videoListResponse is the videos.list response shape we consume.
type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string    `json:"title"`
			Description string    `json:"description"`
			PublishedAt time.Time `json:"publishedAt"`
			Thumbnails  struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
			Tags                 []string `json:"tags"`
			CategoryID           string   `json:"categoryId"`
			DefaultLanguage      string   `json:"defaultLanguage"`
			DefaultAudioLanguage string   `json:"defaultAudioLanguage"`
			LiveBroadcastContent string   `json:"liveBroadcastContent"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// FetchVideoDetails retrieves enriched metadata in chunks of at most 50 ids,
// issued strictly one after another. A chunk failing with quota exhaustion
// aborts the whole operation; any other chunk failure is logged and skipped,
// leaving its videos out of the result.
func (s *service) FetchVideoDetails(ctx context.Context, videoIDs []string) ([]model.VideoDetail, error) {
	details := make([]model.VideoDetail, 0, len(videoIDs))

	for start := 0; start < len(videoIDs); start += detailChunkSize {
		end := start + detailChunkSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		chunk := videoIDs[start:end]

		chunkDetails, err := s.fetchDetailChunk(ctx, chunk)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Code == apperrors.CodeQuotaExceeded {
				return nil, err
			}
			s.logger.Warn("skipping failed detail chunk", "from", start, "size", len(chunk), "err", err)
			continue
		}

		details = append(details, chunkDetails...)
	}

	return details, nil
}

// fetchDetailChunk issues one videos.list request for up to 50 ids.
func (s *service) fetchDetailChunk(ctx context.Context, videoIDs []string) ([]model.VideoDetail, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("id", strings.Join(videoIDs, ","))
	params.Set("maxResults", strconv.Itoa(detailChunkSize))

	var resp videoListResponse
	if err := s.getJSON(ctx, "videos", params, &resp); err != nil {
		return nil, err
	}

	details := make([]model.VideoDetail, 0, len(resp.Items))
	for _, item := range resp.Items {
		thumbnail := item.Snippet.Thumbnails.High.URL
		if thumbnail == "" {
			thumbnail = item.Snippet.Thumbnails.Default.URL
		}

		language := item.Snippet.DefaultLanguage
		if language == "" {
			language = item.Snippet.DefaultAudioLanguage
		}

		details = append(details, model.VideoDetail{
			VideoID:         item.ID,
			Title:           item.Snippet.Title,
			Description:     item.Snippet.Description,
			ThumbnailURL:    thumbnail,
			Duration:        item.ContentDetails.Duration,
			PublishedAt:     item.Snippet.PublishedAt,
			ViewCount:       parseCount(item.Statistics.ViewCount),
			LikeCount:       parseCount(item.Statistics.LikeCount),
			CommentCount:    parseCount(item.Statistics.CommentCount),
			Tags:            item.Snippet.Tags,
			CategoryID:      item.Snippet.CategoryID,
			DefaultLanguage: language,
			LiveBroadcast:   item.Snippet.LiveBroadcastContent,
		})
	}

	return details, nil
}

// parseCount converts the API's string-encoded counters. Missing or malformed
// counters (e.g. hidden like counts) read as 0.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
