package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mkobayashi/ytingest/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var videoColumnNames = []string{
	"channel_id", "video_id", "title", "description", "thumbnail_url",
	"duration", "published_at", "view_count", "like_count", "comment_count",
	"tags", "category_id", "default_language", "classification",
	"transcript", "has_transcript",
}

// anyVideoArgs matches the 16 positional INSERT arguments without asserting
// their values; pgxmock treats a missing WithArgs as "expects zero arguments".
func anyVideoArgs() []any {
	args := make([]any, len(videoColumnNames))
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func testVideo(videoID string) *model.Video {
	return &model.Video{
		ChannelID:      "UC123456789",
		VideoID:        videoID,
		Title:          "Test Video " + videoID,
		Description:    "description",
		ThumbnailURL:   "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg",
		Duration:       "PT3M32S",
		PublishedAt:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		ViewCount:      1000,
		LikeCount:      100,
		CommentCount:   10,
		Tags:           []string{"music"},
		CategoryID:     "10",
		Classification: model.ClassificationRegular,
		Transcript:     "never gonna give you up",
		HasTranscript:  true,
	}
}

func TestVideoRepository_InsertBatch(t *testing.T) {
	tests := []struct {
		name    string
		videos  []*model.Video
		setup   func(mock pgxmock.PgxPoolIface)
		wantLen int
		wantErr bool
	}{
		{
			name:   "successful insert returns ids",
			videos: []*model.Video{testVideo("vid1"), testVideo("vid2")},
			setup: func(mock pgxmock.PgxPoolIface) {
				now := time.Now()
				mock.ExpectBegin()
				mock.ExpectQuery("INSERT INTO videos").
					WithArgs(anyVideoArgs()...).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(1, &now))
				mock.ExpectQuery("INSERT INTO videos").
					WithArgs(anyVideoArgs()...).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(2, &now))
				mock.ExpectCommit()
			},
			wantLen: 2,
		},
		{
			name:    "empty batch issues no statements",
			videos:  []*model.Video{},
			setup:   func(mock pgxmock.PgxPoolIface) {},
			wantLen: 0,
		},
		{
			name:   "insert failure rolls back",
			videos: []*model.Video{testVideo("vid1")},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery("INSERT INTO videos").
					WithArgs(anyVideoArgs()...).
					WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)

			repo := NewVideoRepository(mock)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			inserted, err := repo.InsertBatch(ctx, tt.videos)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, inserted, tt.wantLen)
				for i, v := range inserted {
					assert.Equal(t, i+1, v.ID)
					assert.Equal(t, tt.videos[i].VideoID, v.VideoID)
				}
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}

func TestVideoRepository_InsertBatchMinimal(t *testing.T) {
	tests := []struct {
		name      string
		videos    []*model.Video
		setup     func(mock pgxmock.PgxPoolIface)
		wantCount int64
		wantErr   bool
	}{
		{
			name:   "successful bulk insert with COPY FROM",
			videos: []*model.Video{testVideo("vid1"), testVideo("vid2"), testVideo("vid3")},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectCopyFrom(pgx.Identifier{"videos"}, videoColumnNames).
					WillReturnResult(3)
			},
			wantCount: 3,
		},
		{
			name:      "empty batch",
			videos:    []*model.Video{},
			setup:     func(mock pgxmock.PgxPoolIface) {},
			wantCount: 0,
		},
		{
			name:   "database error in COPY FROM",
			videos: []*model.Video{testVideo("vid1")},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectCopyFrom(pgx.Identifier{"videos"}, videoColumnNames).
					WillReturnError(assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)

			repo := NewVideoRepository(mock)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			count, err := repo.InsertBatchMinimal(ctx, tt.videos)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantCount, count)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}

func TestVideoRepository_ExistingVideoIDs(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		want    map[string]bool
		wantErr bool
	}{
		{
			name: "returns stored ids as a set",
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"video_id"}).
					AddRow("vidA").
					AddRow("vidB")
				mock.ExpectQuery("SELECT video_id FROM videos WHERE channel_id = \\$1").
					WithArgs("UC123456789").
					WillReturnRows(rows)
			},
			want: map[string]bool{"vidA": true, "vidB": true},
		},
		{
			name: "no stored videos",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT video_id FROM videos WHERE channel_id = \\$1").
					WithArgs("UC123456789").
					WillReturnRows(pgxmock.NewRows([]string{"video_id"}))
			},
			want: map[string]bool{},
		},
		{
			name: "query error",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT video_id FROM videos WHERE channel_id = \\$1").
					WithArgs("UC123456789").
					WillReturnError(assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)

			repo := NewVideoRepository(mock)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			got, err := repo.ExistingVideoIDs(ctx, "UC123456789")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}

func TestVideoRepository_DeleteAllForChannel(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM videos WHERE channel_id = \\$1").
		WithArgs("UC123456789").
		WillReturnResult(pgxmock.NewResult("DELETE", 42))

	repo := NewVideoRepository(mock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = repo.DeleteAllForChannel(ctx, "UC123456789")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepository_TriggerMetricsRecompute(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr bool
	}{
		{
			name: "recompute function invoked",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("SELECT recompute_channel_metrics\\(\\$1\\)").
					WithArgs("UC123456789").
					WillReturnResult(pgxmock.NewResult("SELECT", 1))
			},
		},
		{
			name: "recompute failure surfaces as external error",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("SELECT recompute_channel_metrics\\(\\$1\\)").
					WithArgs("UC123456789").
					WillReturnError(assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)

			repo := NewVideoRepository(mock)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			err = repo.TriggerMetricsRecompute(ctx, "UC123456789")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
