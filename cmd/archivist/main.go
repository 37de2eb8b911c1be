package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmcdole/archivist/internal/archive"
	"github.com/mmcdole/archivist/internal/busy"
	"github.com/mmcdole/archivist/internal/config"
	"github.com/mmcdole/archivist/internal/log"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:           "archivist",
		Short:         "archivist browses the document archive from the terminal",
		Long:          "archivist lists, filters and sorts archive documents in a paged table.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(configDir)
			if err != nil {
				return err
			}
			defer a.Close()
			return runTUI(cmd.Context(), a)
		},
	}
	root.PersistentFlags().StringVar(&configDir, "config", config.DefaultPath(), "config directory")

	root.AddCommand(
		newLoginCmd(&configDir),
		newSignupCmd(&configDir),
		newLogoutCmd(&configDir),
		newListCmd(&configDir),
		newShowCmd(&configDir),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "archivist %s\n", Version)
		},
	}
}

// app holds what every command shares: one busy counter for the process
// and the archive client reporting into it
type app struct {
	cfg     *config.Config
	dir     string
	logger  *slog.Logger
	logFile io.Closer
	counter *busy.Counter
	client  *archive.Client
}

func loadApp(dir string) (*app, error) {
	cfg, err := config.LoadConfigFrom(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, logFile, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)
	logger.Info("starting archivist", "version", Version)

	counter := busy.NewCounter(logger)
	a := &app{
		cfg:     cfg,
		dir:     dir,
		logger:  logger,
		logFile: logFile,
		counter: counter,
	}
	a.client = archive.NewClient(cfg.Server.URL, counter, logger,
		archive.WithToken(cfg.Server.Token),
		archive.WithTimeout(time.Duration(cfg.Server.Timeout)*time.Second),
	)
	return a, nil
}

// useServer points the client at url and records it in the config
func (a *app) useServer(url string) {
	a.cfg.Server.URL = url
	a.client = archive.NewClient(url, a.counter, a.logger,
		archive.WithToken(a.cfg.Server.Token),
		archive.WithTimeout(time.Duration(a.cfg.Server.Timeout)*time.Second),
	)
}

func (a *app) requireServer() error {
	if !a.cfg.IsConfigured() {
		return fmt.Errorf("no archive server configured, run 'archivist login --server URL'")
	}
	return nil
}

func (a *app) Close() {
	a.logger.Info("shutting down")
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
