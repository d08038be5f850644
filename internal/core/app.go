package core

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nvallur/sketchtran/internal/backend"
	"github.com/nvallur/sketchtran/internal/config"
	"github.com/nvallur/sketchtran/internal/logger"
	"github.com/nvallur/sketchtran/internal/session"
	"github.com/nvallur/sketchtran/internal/websocket"
)

// App holds the core components of the application that are shared
// between the server, the poller, and the tests.
type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Session *session.Session
	WsHub   *websocket.Hub
}

// New sets up and returns a new App instance. It loads the configuration,
// builds the backend client, and wires the session and websocket hub.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.base_url must be configured")
	}

	log := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	client := backend.New(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)
	sess := session.New(client, log, time.Duration(cfg.Submit.RefreshDelayMs)*time.Millisecond)

	hub := websocket.NewHub()
	go hub.Run()

	log.Info("core application setup complete", "backend", cfg.Backend.BaseURL)
	return &App{
		Config:  cfg,
		Log:     log,
		Session: sess,
		WsHub:   hub,
	}, nil
}
