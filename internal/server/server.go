package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/gymdirection/internal/ingest/alpha"
	gymmcp "github.com/claude/gymdirection/internal/mcp"
	"github.com/claude/gymdirection/internal/storage"
	"github.com/claude/gymdirection/internal/training"
	"github.com/go-chi/chi/v5"
)

// Ledger records import outcomes and summarizes stored data.
type Ledger interface {
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    *training.Service
	alpha  *alpha.Provider
	ledger Ledger
	whois  WhoIser
	users  *userCache
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *training.Service, alphaProvider *alpha.Provider, ledger Ledger, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		alpha:  alphaProvider,
		ledger: ledger,
		users:  newUserCache(),
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity from the local dev user to Tailscale WhoIs.
func (s *Server) SetTailscale(w WhoIser) {
	s.whois = w
}

// SetMCP mounts an MCP HTTP handler at /mcp behind identity resolution.
// The resolved user reaches tool handlers through gymmcp.WithUserID.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(s.Identity).Handle("/mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := gymmcp.WithUserID(r.Context(), userIDFromContext(r))
		h.ServeHTTP(w, r.WithContext(ctx))
	}))
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Public profile pages (no identity)
		r.Get("/public/{uid}", s.handlePublicProfile)

		// Import endpoints (API key required)
		r.With(APIKeyAuth(s.apiKey), s.Identity).Post("/import/alpha", s.handleAlphaImport)

		r.Group(func(r chi.Router) {
			r.Use(s.Identity)

			r.Get("/me", s.handleMe)

			r.Get("/program", s.handleGetProgram)
			r.Put("/program", s.handleSaveProgram)

			r.Get("/sessions", s.handleListSessions)
			r.Post("/sessions", s.handleCreateSession)
			r.Get("/sessions/{id}", s.handleGetSession)
			r.Put("/sessions/{id}", s.handleUpdateSession)
			r.Delete("/sessions/{id}", s.handleDeleteSession)
			r.Get("/calendar", s.handleCalendar)

			r.Get("/prs", s.handleGetPRs)
			r.Post("/prs/sync-excerpt", s.handleSyncExcerpt)

			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)

			r.Get("/imports", s.handleImportLogs)
			r.Get("/stats", s.handleStats)
		})
	})
}
