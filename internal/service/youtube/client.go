package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	apperrors "github.com/mkobayashi/ytingest/internal/errors"
)

const (
	defaultAPIBaseURL       = "https://www.googleapis.com/youtube/v3"
	defaultTimedtextBaseURL = "https://www.youtube.com/api/timedtext"

	// Data API quota is generous for read calls but the timedtext endpoint
	// throttles aggressively; one pace covers both.
	requestsPerSecond = 5
)

// service implements Service against the YouTube Data API v3 and the
// timedtext endpoint.
type service struct {
	apiKey           string
	apiBaseURL       string
	timedtextBaseURL string
	httpClient       *http.Client
	limiter          *rate.Limiter
	logger           *log.Logger
}

// NewService creates a Service backed by the public YouTube endpoints.
func NewService(apiKey string) (Service, error) {
	return NewServiceWithEndpoints(apiKey, defaultAPIBaseURL, defaultTimedtextBaseURL, nil)
}

// NewServiceWithEndpoints creates a Service with custom endpoints and HTTP
// client (for testing against httptest servers).
func NewServiceWithEndpoints(apiKey, apiBaseURL, timedtextBaseURL string, httpClient *http.Client) (Service, error) {
	if apiKey == "" {
		return nil, apperrors.New(apperrors.CodeConfig, "youtube API key is not configured. Set youtube_api_key in the config file or the YOUTUBE_API_KEY environment variable")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &service{
		apiKey:           apiKey,
		apiBaseURL:       apiBaseURL,
		timedtextBaseURL: timedtextBaseURL,
		httpClient:       httpClient,
		limiter:          rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:           log.WithPrefix("youtube"),
	}, nil
}

// apiErrorResponse is the Data API error envelope.
type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// getJSON issues one paced GET against the Data API and decodes the response
// into out. Non-success responses are mapped to the error taxonomy.
func (s *service) getJSON(ctx context.Context, resource string, params url.Values, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, "rate limiter wait interrupted")
	}

	params.Set("key", s.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", s.apiBaseURL, resource, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to build API request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, fmt.Sprintf("youtube API request failed (%s)", resource))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, "failed to read API response body")
	}

	if resp.StatusCode != http.StatusOK {
		return mapAPIError(resource, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, fmt.Sprintf("failed to decode %s response", resource))
	}

	return nil
}

// mapAPIError classifies a non-success Data API response. Quota exhaustion and
// not-found must stay distinguishable, everything else carries status and body.
func mapAPIError(resource string, statusCode int, body []byte) error {
	var envelope apiErrorResponse
	reason := ""
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error.Errors) > 0 {
		reason = envelope.Error.Errors[0].Reason
	}

	switch reason {
	case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "userRateLimitExceeded":
		return apperrors.New(apperrors.CodeQuotaExceeded, "youtube API quota exceeded")
	case "playlistNotFound", "channelNotFound", "videoNotFound", "notFound":
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("%s: requested resource not found", resource))
	}

	if statusCode == http.StatusNotFound {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("%s: requested resource not found", resource))
	}

	message := fmt.Sprintf("youtube API %s returned status %d: %s", resource, statusCode, truncateBody(body))
	return apperrors.New(apperrors.CodeExternal, message)
}

// truncateBody keeps error messages readable for large HTML error pages.
func truncateBody(body []byte) string {
	const maxLen = 512
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
