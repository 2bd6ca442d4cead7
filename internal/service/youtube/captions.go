package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	apperrors "github.com/mkobayashi/ytingest/internal/errors"
)

// captionListResponse is the captions.list response shape we consume.
type captionListResponse struct {
	Items []struct {
		Snippet struct {
			Language  string `json:"language"`
			Name      string `json:"name"`
			TrackKind string `json:"trackKind"`
		} `json:"snippet"`
	} `json:"items"`
}

// ListCaptionTracks lists the caption tracks attached to a video.
func (s *service) ListCaptionTracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	if videoID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "video ID is required")
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("videoId", videoID)

	var resp captionListResponse
	if err := s.getJSON(ctx, "captions", params, &resp); err != nil {
		return nil, err
	}

	tracks := make([]CaptionTrack, 0, len(resp.Items))
	for _, item := range resp.Items {
		tracks = append(tracks, CaptionTrack{
			Language:      item.Snippet.Language,
			Name:          item.Snippet.Name,
			AutoGenerated: item.Snippet.TrackKind == "asr",
		})
	}

	return tracks, nil
}

// FetchCaptionPayload downloads one caption payload from the timedtext
// endpoint. The payload is returned raw; format parsing happens upstream.
func (s *service) FetchCaptionPayload(ctx context.Context, videoID, language, format string) ([]byte, error) {
	if videoID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "video ID is required")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, "rate limiter wait interrupted")
	}

	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", language)
	if format != "" && format != FormatSRV1 {
		// srv1 is the endpoint's default format and takes no fmt parameter
		params.Set("fmt", format)
	}

	reqURL := fmt.Sprintf("%s?%s", s.timedtextBaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build timedtext request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, "timedtext request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to read
	case http.StatusNotFound:
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("captions not found for video %s in language %s", videoID, language))
	case http.StatusForbidden:
		return nil, apperrors.New(apperrors.CodeExternal, "access denied: video region restricted or captions disabled")
	case http.StatusTooManyRequests:
		return nil, apperrors.New(apperrors.CodeExternal, "rate limited by timedtext endpoint")
	default:
		return nil, apperrors.New(apperrors.CodeExternal, fmt.Sprintf("timedtext endpoint returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, "failed to read timedtext response")
	}

	return body, nil
}
