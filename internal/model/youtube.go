package model

import "time"

// Scraping status values for a channel sync run
const (
	ScrapingStatusIdle      = "idle"
	ScrapingStatusSyncing   = "syncing"
	ScrapingStatusCompleted = "completed"
	ScrapingStatusError     = "error"
)

// Video classification values
const (
	ClassificationShort   = "short"
	ClassificationRegular = "regular"
	ClassificationLive    = "live"
)

// Channel represents a YouTube channel tracked for ingestion
type Channel struct {
	ID                string     `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	UploadsPlaylistID string     `json:"uploads_playlist_id" db:"uploads_playlist_id"`
	ScrapingStatus    string     `json:"scraping_status" db:"scraping_status"`
	LastError         string     `json:"last_error,omitempty" db:"last_error"`
	LastScrapedAt     *time.Time `json:"last_scraped_at,omitempty" db:"last_scraped_at"`
}

// CatalogItem is a video stub from one page of the uploads playlist.
// Transient, never persisted.
type CatalogItem struct {
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
}

// CatalogPage is one page of the uploads playlist plus the continuation token
// for the next page. An empty NextPageToken means end of data.
type CatalogPage struct {
	Items         []CatalogItem `json:"items"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

// VideoDetail is the enriched metadata for one video, immutable once fetched
// within a sync run. Duration keeps the raw ISO-8601 code from the API.
type VideoDetail struct {
	VideoID         string    `json:"video_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	Duration        string    `json:"duration"`
	PublishedAt     time.Time `json:"published_at"`
	ViewCount       int64     `json:"view_count"`
	LikeCount       int64     `json:"like_count"`
	CommentCount    int64     `json:"comment_count"`
	Tags            []string  `json:"tags"`
	CategoryID      string    `json:"category_id"`
	DefaultLanguage string    `json:"default_language"`
	LiveBroadcast   string    `json:"live_broadcast"` // "none", "live" or "upcoming"
}

// TranscriptResult is the outcome of transcript retrieval for one video.
// HasTranscript may be true with a placeholder transcript when caption tracks
// exist but no payload could be extracted.
type TranscriptResult struct {
	VideoID       string `json:"video_id"`
	Transcript    string `json:"transcript"`
	HasTranscript bool   `json:"has_transcript"`
	Language      string `json:"language,omitempty"`
}

// Video is an ingested video as persisted: detail, transcript and derived
// classification merged under the owning channel. Unique per
// (channel_id, video_id).
type Video struct {
	ID              int        `json:"id" db:"id"`
	ChannelID       string     `json:"channel_id" db:"channel_id"`
	VideoID         string     `json:"video_id" db:"video_id"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description" db:"description"`
	ThumbnailURL    string     `json:"thumbnail_url" db:"thumbnail_url"`
	Duration        string     `json:"duration" db:"duration"`
	PublishedAt     time.Time  `json:"published_at" db:"published_at"`
	ViewCount       int64      `json:"view_count" db:"view_count"`
	LikeCount       int64      `json:"like_count" db:"like_count"`
	CommentCount    int64      `json:"comment_count" db:"comment_count"`
	Tags            []string   `json:"tags" db:"tags"`
	CategoryID      string     `json:"category_id" db:"category_id"`
	DefaultLanguage string     `json:"default_language" db:"default_language"`
	Classification  string     `json:"classification" db:"classification"`
	Transcript      string     `json:"transcript" db:"transcript"`
	HasTranscript   bool       `json:"has_transcript" db:"has_transcript"`
	CreatedAt       *time.Time `json:"created_at,omitempty" db:"created_at"`
}
