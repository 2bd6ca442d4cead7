package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytingest",
	Short: "YouTube channel ingestion pipeline",
	Long: `ytingest syncs YouTube channel catalogs into PostgreSQL:
video metadata, classification and transcripts, fetched through the
YouTube Data API and the public caption endpoint.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
