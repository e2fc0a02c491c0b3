package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"mdnotes-server/internal/config"
	"mdnotes-server/internal/logger"
	"mdnotes-server/internal/repository"
	"mdnotes-server/internal/server"
	"mdnotes-server/internal/service"
	"mdnotes-server/internal/watcher"
	"mdnotes-server/internal/websocket"

	"github.com/spf13/cobra"
)

var (
	configPath string
	notesDir   string
	port       string
	host       string
)

var rootCmd = &cobra.Command{
	Use:           "mdnotes-server",
	Short:         "Serve a directory of markdown notes over HTTP",
	Long:          "mdnotes-server lists, reads, writes and deletes markdown notes in one directory and serves a small web editor for them.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&notesDir, "dir", "d", "", "notes directory (overrides NOTES_DIR)")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	rootCmd.Flags().StringVar(&host, "host", "", "listen host (overrides HOST)")
}

// loadConfig applies command line overrides on top of config.Load.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("dir") {
		cfg.Notes.Dir = notesDir
	}
	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		cfg.Server.Port = port
	}
	if f := cmd.Flags().Lookup("host"); f != nil && f.Changed {
		cfg.Server.Host = host
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(cfg *config.Config) error {
	log := logger.New(cfg.Logging, cfg.Server.Env)

	repo, err := repository.NewNoteRepository(cfg.Notes.Dir, cfg.Notes.Pattern)
	if err != nil {
		return err
	}

	noteService := service.NewNoteService(repo, cfg.Notes.SeedName, log)
	if err := noteService.Bootstrap(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()

	hub := websocket.NewManager(websocket.Options{
		MaxConnections: cfg.WebSocket.MaxConnections,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		WriteWait:      cfg.WebSocket.WriteWait,
		PongWait:       cfg.WebSocket.PongWait,
		PingPeriod:     cfg.WebSocket.PingPeriod,
	}, log)
	go hub.Run(hubCtx)

	dirWatcher, err := watcher.New(cfg.Notes.Dir, cfg.Notes.Pattern, hub, log)
	if err != nil {
		log.Warn().Err(err).Msg("change feed disabled: cannot watch notes directory")
	} else {
		go dirWatcher.Run(hubCtx)
	}

	router, err := server.NewRouter(server.Deps{
		Config: cfg,
		Notes:  noteService,
		Hub:    hub,
		Logger: log,
	})
	if err != nil {
		return err
	}

	srv := server.New(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Str("env", cfg.Server.Env).
			Str("notes_dir", cfg.Notes.Dir).
			Msg("starting " + server.ServiceName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	cancelHub()

	log.Info().Msg("server stopped gracefully")
	return nil
}
