package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkobayashi/ytingest/internal/config"
	"github.com/mkobayashi/ytingest/internal/repository"
	"github.com/mkobayashi/ytingest/internal/service/youtube"
)

// channelCmd represents the channel command
var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "YouTube channel operations",
	Long:  `Operations for managing tracked YouTube channels.`,
}

// channelAddCmd resolves a channel and saves it to the database
var channelAddCmd = &cobra.Command{
	Use:   "add [CHANNEL_ID|@handle]",
	Short: "Add a YouTube channel to track",
	Long:  `Resolve a channel by its UC... id or @handle and save it to the database.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channelRef := args[0]

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

		// Create YouTube service
		youtubeService, err := youtube.NewService(cfg.YouTubeAPIKey)
		if err != nil {
			return err
		}

		// Resolve channel metadata including its uploads playlist
		channel, err := youtubeService.FetchChannelInfo(ctx, channelRef)
		if err != nil {
			return fmt.Errorf("failed to resolve channel: %w", err)
		}

		// Save channel
		channelRepo := repository.NewChannelRepository(dbPool)
		if err := channelRepo.Create(ctx, channel); err != nil {
			return fmt.Errorf("failed to save channel: %w", err)
		}

		// Display result as JSON
		result, err := json.MarshalIndent(channel, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Printf("Channel saved successfully:\n%s\n", string(result))
		return nil
	},
}

// channelListCmd lists all saved channels
var channelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tracked channels",
	Long:  `List all channels saved in the database with their sync status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		channelRepo := repository.NewChannelRepository(dbPool)
		channels, err := channelRepo.List(ctx, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list channels: %w", err)
		}

		if len(channels) == 0 {
			fmt.Println("No channels saved yet. Add one with 'ytingest channel add'.")
			return nil
		}

		// Display result as JSON
		result, err := json.MarshalIndent(channels, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Println(string(result))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(channelCmd)
	channelCmd.AddCommand(channelAddCmd)
	channelCmd.AddCommand(channelListCmd)

	channelListCmd.Flags().Int("limit", 50, "Maximum number of channels to list")
	channelListCmd.Flags().Int("offset", 0, "Number of channels to skip")
}
