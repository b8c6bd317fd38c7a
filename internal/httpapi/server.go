package httpapi

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"campus-access-control/backend/internal/audit"
	auditrepo "campus-access-control/backend/internal/audit/repository"
	authsvc "campus-access-control/backend/internal/auth/service"
	directoryrepo "campus-access-control/backend/internal/directory/repository"
	presencesvc "campus-access-control/backend/internal/presence/service"
	"campus-access-control/backend/internal/security"
	sessionsvc "campus-access-control/backend/internal/session/service"
	"campus-access-control/backend/internal/telemetry"
)

type Dependencies struct {
	Logger    *log.Logger
	Addr      string
	Auth      *authsvc.AuthService
	Registry  *sessionsvc.Registry
	Ledger    *presencesvc.Ledger
	Directory directoryrepo.Repository
	Tokens    *security.TokenProvider
	AuditLog  audit.AuditLogger
	AuditRepo auditrepo.Repository
	Emitter   telemetry.EventEmitter
	DB        *sql.DB

	// OverdueThreshold overrides the ledger default when listing overdue
	// stays. Zero keeps the default.
	OverdueThreshold time.Duration
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux

	auth      *authsvc.AuthService
	registry  *sessionsvc.Registry
	ledger    *presencesvc.Ledger
	directory directoryrepo.Repository
	tokens    *security.TokenProvider
	auditRepo auditrepo.Repository
	emitter   telemetry.EventEmitter
	db        *sql.DB
	overdue   time.Duration
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:    d.Logger,
		mux:       mux,
		auth:      d.Auth,
		registry:  d.Registry,
		ledger:    d.Ledger,
		directory: d.Directory,
		tokens:    d.Tokens,
		auditRepo: d.AuditRepo,
		emitter:   d.Emitter,
		db:        d.DB,
		overdue:   d.OverdueThreshold,
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/login", s.handleLogin)
	mux.HandleFunc("POST /v1/guards", s.requireAdmin(s.handleRegisterGuard))

	mux.HandleFunc("POST /v1/sessions", s.requireAuth(s.handleStartSession))
	mux.HandleFunc("POST /v1/sessions/heartbeat", s.requireAuth(s.handleHeartbeat))
	mux.HandleFunc("POST /v1/sessions/end", s.requireAuth(s.handleEndSession))
	mux.HandleFunc("POST /v1/sessions/force-end", s.requireAdmin(s.handleForceEndSessions))
	mux.HandleFunc("GET /v1/sessions", s.requireAuth(s.handleListSessions))

	mux.HandleFunc("POST /v1/presence/entry", s.requireAuth(s.handleRecordEntry))
	mux.HandleFunc("POST /v1/presence/exit", s.requireAuth(s.handleRecordExit))
	mux.HandleFunc("GET /v1/presence", s.requireAuth(s.handleListInside))
	mux.HandleFunc("GET /v1/presence/overdue", s.requireAuth(s.handleListOverdue))
	mux.HandleFunc("GET /v1/presence/{personID}/last-direction", s.requireAuth(s.handleLastDirection))

	mux.HandleFunc("GET /v1/faculties", s.requireAuth(s.handleListFaculties))
	mux.HandleFunc("GET /v1/schools", s.requireAuth(s.handleListSchools))
	mux.HandleFunc("GET /v1/audit", s.requireAdmin(s.handleListAudit))

	handler := auditMiddleware(d.AuditLog, mux)
	handler = traceMiddleware(handler)
	handler = loggingMiddleware(d.Logger, handler)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "database ping failed")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
