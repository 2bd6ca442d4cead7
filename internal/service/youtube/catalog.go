package youtube

import (
	"context"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/mkobayashi/ytingest/internal/errors"
	"github.com/mkobayashi/ytingest/internal/model"
)

// maxPageSize is the largest page the playlistItems endpoint serves.
const maxPageSize = 50

// playlistItemsResponse is the playlistItems.list response shape we consume.
type playlistItemsResponse struct {
	Items []struct {
		Snippet struct {
			Title       string    `json:"title"`
			PublishedAt time.Time `json:"publishedAt"`
			ResourceID  struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// FetchCatalog walks the uploads playlist page by page, threading the
// continuation token, until maxItems stubs are collected or a page comes back
// without a next token. maxItems 0 means all available.
func (s *service) FetchCatalog(ctx context.Context, uploadsPlaylistID string, maxItems int) ([]model.CatalogItem, error) {
	if uploadsPlaylistID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "uploads playlist ID is required")
	}

	var items []model.CatalogItem
	pageToken := ""

	for {
		pageSize := maxPageSize
		if maxItems > 0 {
			if remaining := maxItems - len(items); remaining < pageSize {
				pageSize = remaining
			}
		}

		page, err := s.fetchCatalogPage(ctx, uploadsPlaylistID, pageToken, pageSize)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Items...)

		if maxItems > 0 && len(items) >= maxItems {
			return items[:maxItems], nil
		}
		if page.NextPageToken == "" {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}

// fetchCatalogPage requests one page of the uploads playlist.
func (s *service) fetchCatalogPage(ctx context.Context, playlistID, pageToken string, pageSize int) (*model.CatalogPage, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", strconv.Itoa(pageSize))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp playlistItemsResponse
	if err := s.getJSON(ctx, "playlistItems", params, &resp); err != nil {
		return nil, err
	}

	page := &model.CatalogPage{
		Items:         make([]model.CatalogItem, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		if item.Snippet.ResourceID.VideoID == "" {
			continue
		}
		page.Items = append(page.Items, model.CatalogItem{
			VideoID:     item.Snippet.ResourceID.VideoID,
			Title:       item.Snippet.Title,
			PublishedAt: item.Snippet.PublishedAt,
		})
	}

	return page, nil
}
