// A shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/nvallur/sketchtran/internal/config"
	"github.com/nvallur/sketchtran/internal/core"
	"github.com/nvallur/sketchtran/internal/session"
	"github.com/nvallur/sketchtran/internal/websocket"
)

// SetupTestApp builds a core.App wired to a FakeBackend, with a silent
// logger and a running websocket hub.
func SetupTestApp(t *testing.T) (*core.App, *FakeBackend) {
	t.Helper()

	fake := NewFakeBackend()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{}
	cfg.Backend.TimeoutSeconds = 5

	hub := websocket.NewHub()
	go hub.Run()

	app := &core.App{
		Config:  cfg,
		Log:     log,
		Session: session.New(fake, log, 0),
		WsHub:   hub,
	}
	return app, fake
}
