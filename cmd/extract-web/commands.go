package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/extractweb/extract-web/internal/adapter/filesystem"
	"github.com/extractweb/extract-web/internal/adapter/httpfetch"
	"github.com/extractweb/extract-web/internal/adapter/sqlite"
	"github.com/extractweb/extract-web/internal/config"
	"github.com/extractweb/extract-web/internal/input"
	"github.com/extractweb/extract-web/internal/logger"
	"github.com/extractweb/extract-web/internal/port"
	"github.com/extractweb/extract-web/internal/service/downloader"
	"github.com/extractweb/extract-web/internal/service/driver"
	"github.com/extractweb/extract-web/internal/service/extractor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "extract-web [url]",
		Short: "Download the scripts, stylesheets and HTML of a web page",
		Long: `extract-web fetches one page, lists the JavaScript and CSS files it links to,
downloads them into the output directory and saves the page markup as index.html.
The URL is prompted for when it is not given as an argument, flag or environment variable.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			var arg string
			if len(args) > 0 {
				arg = args[0]
			}
			pageURL, err := input.Resolve(cmd.InOrStdin(), cmd.OutOrStdout(), arg, cfg.URL)
			if err != nil {
				return err
			}

			return run(cmd, cfg, pageURL)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")
	flags.StringP("output", "o", "recursos", "output directory")
	flags.String("timeout", "30s", "HTTP request timeout (0 disables it)")
	flags.String("user-agent", "", "User-Agent header to send (none by default)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("journal", "", "SQLite file recording every run (disabled when empty)")
	rootCmd.Flags().String("url", "", "page URL (alternative to the positional argument)")

	rootCmd.AddCommand(newHistoryCmd(&configPath))

	return rootCmd
}

// loadConfig merges defaults, the config file, environment and flags, then
// initializes the logger
func loadConfig(cmd *cobra.Command, configPath string) (*config.Config, error) {
	v := config.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}

	cfg, err := config.Load(v, configPath)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// run wires the components and performs one extraction.
// Run failures are already reported on stdout, so they do not change the exit status.
func run(cmd *cobra.Command, cfg *config.Config, pageURL string) error {
	zapLogger := logger.GetZapLogger()
	zapLogger.Info("starting extract-web",
		zap.String("version", version),
		zap.String("url", pageURL),
		zap.String("output_dir", cfg.Output.Dir))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := httpfetch.NewClientWithConfig(&httpfetch.ClientConfig{
		Timeout:   cfg.HTTP.GetTimeout(),
		UserAgent: cfg.HTTP.UserAgent,
	})
	fsManager := filesystem.NewManagerWithChunkSize(cfg.Output.Dir, cfg.Download.GetChunkSize())

	var journal port.Journal
	if cfg.JournalEnabled() {
		store, err := sqlite.Open(cfg.Journal.Path)
		if err != nil {
			// The journal is optional; the run still happens
			zapLogger.Warn("failed to open journal", zap.Error(err), zap.String("path", cfg.Journal.Path))
		} else {
			defer store.Close()
			journal = store
		}
	}

	d := driver.New(
		extractor.New(fetcher, zapLogger),
		downloader.New(fetcher, fsManager, zapLogger, cfg.Download.GetProgressInterval()),
		fsManager,
		journal,
		cmd.OutOrStdout(),
		zapLogger,
	)

	if _, err := d.Run(ctx, pageURL); err != nil {
		zapLogger.Debug("run did not complete", zap.Error(err))
		if errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

func newHistoryCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs recorded in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if !cfg.JournalEnabled() {
				return errors.New("no journal configured (set --journal or journal.path)")
			}

			store, err := sqlite.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, r := range runs {
				status := "ok"
				if r.Error != "" {
					status = r.Error
				}
				fmt.Fprintf(out, "#%d %s: %d/%d downloaded, %d failed, %s (%s)\n",
					r.ID, r.PageURL, r.Downloaded, r.Scripts+r.Stylesheets, r.Failed,
					humanize.Bytes(uint64(r.Bytes)), status)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")

	return cmd
}
