// Background polling: the backend only mutates job state server-side, so
// the registry is refreshed on an interval and every new snapshot is
// pushed to connected browser tabs over the websocket hub.

package poller

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/nvallur/sketchtran/internal/core"
	"github.com/nvallur/sketchtran/internal/session"
)

// Start schedules the periodic registry refresh and returns the scheduler
// so the caller can stop it on shutdown. A refresh_interval of 0 disables
// polling entirely and returns nil.
func Start(app *core.App) *gocron.Scheduler {
	interval := app.Config.RefreshInterval
	if interval == 0 {
		app.Log.Info("refresh_interval is 0, background polling is disabled")
		return nil
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	app.Log.Info("scheduling registry refresh", "interval_seconds", interval)
	_, err := s.Every(interval).Seconds().Do(func() {
		refreshOnce(app)
	})
	if err != nil {
		app.Log.Error("failed to schedule registry refresh", "error", err)
		return nil
	}

	s.StartAsync()
	return s
}

func refreshOnce(app *core.App) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(app.Config.Backend.TimeoutSeconds)*time.Second)
	defer cancel()

	if err := app.Session.Refresh(ctx); err != nil {
		// A manual refresh may be in flight; skip this tick quietly.
		if errors.Is(err, session.ErrBusy) {
			return
		}
		app.Log.Warn("background refresh failed, registry retained", "error", err)
		return
	}
	app.WsHub.Broadcast(map[string]interface{}{
		"type": "jobs",
		"jobs": app.Session.Snapshot(),
	})
}
