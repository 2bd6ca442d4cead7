package ingest

import (
	apperrors "github.com/mkobayashi/ytingest/internal/errors"
	"github.com/mkobayashi/ytingest/internal/model"
)

// Mode selects how a sync run treats videos already stored for the channel.
type Mode string

const (
	// ModeFull clears the channel's stored videos and re-inserts everything
	// fetched in this run.
	ModeFull Mode = "full"

	// ModeIncremental is append-only: videos already stored are skipped and
	// never updated, only unseen videos are inserted.
	ModeIncremental Mode = "incremental"
)

// ParseMode validates a mode string from the CLI.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFull, ModeIncremental:
		return Mode(s), nil
	default:
		return "", apperrors.New(apperrors.CodeInvalidArg, "invalid sync mode \""+s+"\" (expected full or incremental)")
	}
}

// planInserts decides which candidate videos a run will insert. Full mode
// inserts everything (the caller has already cleared the channel).
// Incremental mode subtracts the stored set; an empty plan is a successful
// no-op, not an error.
func planInserts(mode Mode, existing map[string]bool, candidates []*model.Video) []*model.Video {
	if mode == ModeFull {
		return candidates
	}

	planned := make([]*model.Video, 0, len(candidates))
	for _, video := range candidates {
		if existing[video.VideoID] {
			continue
		}
		planned = append(planned, video)
	}
	return planned
}
