package server

import (
	"net/http"

	"github.com/ternarybob/snapdiff/internal/docs"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Liveness and version
	mux.HandleFunc("/ping", s.app.APIHandler.PingHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	// API routes - Batches
	mux.HandleFunc("/api/snap-shots", s.app.SnapshotHandler.CollectionHandler) // GET (list), POST (create)
	mux.HandleFunc("/api/snap-shots/", s.app.SnapshotHandler.ItemHandler)      // GET/DELETE /{id}

	// API routes - Jobs
	mux.HandleFunc("/api/jobs", s.app.JobHandler.ListRunningHandler) // GET - running jobs
	mux.HandleFunc("/api/jobs/", s.app.JobHandler.ItemHandler)       // GET /{id}

	// API routes - Maintenance
	mux.HandleFunc("/api/admin/clean-up", s.app.AdminHandler.CleanUpHandler)

	// Rendered screenshots
	mux.Handle("/api/assets/", http.StripPrefix("/api/assets/",
		http.FileServer(http.Dir(s.app.AssetWriter.Root()))))

	// API documentation
	mux.HandleFunc("/api/docs/openapi.json", docs.SpecHandler)

	// Catch-all for unknown API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
