package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/places-geojson/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "places-geojson",
	Short:        "Convert saved map places to GeoJSON",
	Long:         "Reads a saved-places CSV export (Title, Note, URL, Comment), looks up each place with the Google Places API, and writes a GeoJSON FeatureCollection.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
