package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkobayashi/ytingest/internal/config"
	"github.com/mkobayashi/ytingest/internal/repository"
	"github.com/mkobayashi/ytingest/internal/service/ingest"
	"github.com/mkobayashi/ytingest/internal/service/transcript"
	"github.com/mkobayashi/ytingest/internal/service/youtube"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Channel sync operations",
	Long:  `Run the ingestion pipeline for tracked channels.`,
}

// ingestRunCmd runs one sync for a channel
var ingestRunCmd = &cobra.Command{
	Use:   "run [CHANNEL_ID]",
	Short: "Sync one channel's catalog into the database",
	Long: `Run the full ingestion pipeline for a tracked channel: walk the
upload catalog, fetch video details and transcripts, classify each video and
persist the result. The channel must have been added with 'ytingest channel add'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channelID := args[0]

		// Sync runs are long-lived; bound them by Ctrl-C, not a timeout
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Get run flags
		maxVideos, _ := cmd.Flags().GetInt("max-videos")
		includeShorts, _ := cmd.Flags().GetBool("include-shorts")
		transcripts, _ := cmd.Flags().GetBool("transcripts")
		modeFlag, _ := cmd.Flags().GetString("mode")

		mode, err := ingest.ParseMode(modeFlag)
		if err != nil {
			return err
		}

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

		// Create YouTube service
		youtubeService, err := youtube.NewService(cfg.YouTubeAPIKey)
		if err != nil {
			return err
		}

		// Create repositories and pipeline services
		channelRepo := repository.NewChannelRepository(dbPool)
		videoRepo := repository.NewVideoRepository(dbPool)
		coordinator := transcript.NewCoordinator(transcript.NewFetcher(youtubeService))
		ingestService := ingest.NewService(youtubeService, coordinator, channelRepo, videoRepo)

		// Run the sync
		runResult, err := ingestService.Run(ctx, channelID, ingest.Options{
			MaxVideos:     maxVideos,
			IncludeShorts: includeShorts,
			Transcripts:   transcripts,
			Mode:          mode,
		})
		if err != nil {
			return err
		}

		// Display result as JSON
		result, err := json.MarshalIndent(runResult, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Printf("Sync completed:\n%s\n", string(result))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.AddCommand(ingestRunCmd)

	ingestRunCmd.Flags().Int("max-videos", 0, "Maximum number of videos to sync (0 = all)")
	ingestRunCmd.Flags().Bool("include-shorts", false, "Keep short-classified videos in the insert set")
	ingestRunCmd.Flags().Bool("transcripts", false, "Fetch transcripts for synced videos")
	ingestRunCmd.Flags().String("mode", "incremental", "Sync mode: full or incremental")
}
