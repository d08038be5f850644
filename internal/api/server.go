// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"io"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nvallur/sketchtran/internal/assets"
	"github.com/nvallur/sketchtran/internal/core"
	"github.com/nvallur/sketchtran/internal/session"
)

// Server holds the dependencies for our API.
type Server struct {
	app     *core.App
	session *session.Session
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:     app,
		session: app.Session,
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/jobs", s.handleListJobs)
		r.Post("/jobs", s.handleSubmitJob)
		r.Post("/jobs/refresh", s.handleRefreshJobs)
		r.Get("/jobs/{jobID}/instructions", s.handleGetInstructions)
		r.Get("/jobs/{jobID}/download", s.handleResolveDownload)
		r.Get("/languages", s.handleListLanguages)
	})

	// Drawing proxy (object-store URLs are time-limited and not embeddable
	// cross-origin, so the details view loads images through it)
	r.Get("/api/proxy/drawing", s.handleProxyDrawing)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// WebSocket route: pushes fresh registry snapshots to open tabs.
	r.Get("/ws/jobs", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub.ServeWs(w, r)
	})

	// Frontend Routes
	webSubFS, err := fs.Sub(assets.WebFS, "web")
	if err != nil {
		log.Fatalf("Failed to create web sub-filesystem: %v", err)
	}

	// Create a file server for the static assets within the embedded FS.
	staticFS, err := fs.Sub(webSubFS, "dist")
	if err != nil {
		log.Fatalf("Failed to create static sub-filesystem: %v", err)
	}

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// This handler serves a specific HTML file from the embedded FS.
	serveHTML := func(fileName string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			file, err := webSubFS.Open(fileName)
			if err != nil {
				http.NotFound(w, r)
				log.Printf("Error serving embedded file %s: %v", fileName, err)
				return
			}
			http.ServeContent(w, r, fileName, time.Time{}, file.(io.ReadSeeker))
		}
	}

	r.Get("/", serveHTML("home.html"))

	return r
}
