package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shakilabs/ott-price-compare/internal/config"
	"github.com/shakilabs/ott-price-compare/internal/logging"
	"github.com/shakilabs/ott-price-compare/internal/store"
)

// app holds what every subcommand needs once flags and config are loaded.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
	store  *store.FileStore
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "ottctl",
		Short: "OTT price data maintenance CLI",
		Long: `ottctl works directly on the price data directory.

Example usage:
  ottctl trends youtube-premium --table   # Show the trend view for a service
  ottctl record-history                   # Snapshot every active service
  ottctl fetch-rates                      # Refresh exchange rates and reprice
  ottctl sitemap --out dist/sitemap.xml   # Write the sitemap`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.String("data-dir", "", "price data directory (default from config)")
	flags.BoolP("verbose", "v", false, "verbose output")
	_ = a.v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))

	root.AddCommand(
		newTrendsCmd(a),
		newRecordHistoryCmd(a),
		newFetchRatesCmd(a),
		newSitemapCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.LoadFrom(a.v)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level := cfg.LogLevel
	if a.v.GetBool("verbose") {
		level = "debug"
	}
	a.cfg = cfg
	a.logger = logging.New(level, "text", os.Stderr)
	a.store = store.NewFileStore(cfg.DataDir, store.Options{CacheTTL: cfg.CacheTTL, CacheSize: cfg.CacheSize})
	a.logger.Debug("configuration loaded", "data_dir", cfg.DataDir)
	return nil
}
