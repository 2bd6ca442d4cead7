package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkobayashi/ytingest/internal/config"
	"github.com/mkobayashi/ytingest/internal/duration"
	"github.com/mkobayashi/ytingest/internal/model"
	"github.com/mkobayashi/ytingest/internal/repository"
)

// videoListing is a video row with the duration rendered for display
type videoListing struct {
	*model.Video
	DurationDisplay string `json:"duration_display"`
}

// videoCmd represents the video command
var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Ingested video operations",
	Long:  `Operations for inspecting ingested videos.`,
}

// videoListCmd lists ingested videos for a channel
var videoListCmd = &cobra.Command{
	Use:   "list [CHANNEL_ID]",
	Short: "List ingested videos for a channel",
	Long:  `List videos ingested for a channel, newest first.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channelID := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Load configuration
		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Create database connection
		dbPool, err := config.NewDatabasePool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbPool.Close()

		// Get pagination flags
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		videoRepo := repository.NewVideoRepository(dbPool)
		videos, err := videoRepo.GetByChannelID(ctx, channelID, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list videos: %w", err)
		}

		if len(videos) == 0 {
			fmt.Println("No videos ingested for this channel yet. Run 'ytingest ingest run'.")
			return nil
		}

		listings := make([]videoListing, 0, len(videos))
		for _, v := range videos {
			listings = append(listings, videoListing{
				Video:           v,
				DurationDisplay: duration.Format(duration.Seconds(v.Duration)),
			})
		}

		// Display result as JSON
		result, err := json.MarshalIndent(listings, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Println(string(result))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(videoCmd)
	videoCmd.AddCommand(videoListCmd)

	videoListCmd.Flags().Int("limit", 50, "Maximum number of videos to list")
	videoListCmd.Flags().Int("offset", 0, "Number of videos to skip")
}
