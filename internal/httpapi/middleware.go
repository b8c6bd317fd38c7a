package httpapi

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"campus-access-control/backend/internal/audit"
	"campus-access-control/backend/internal/security"
)

type ctxKey int

const guardCtxKey ctxKey = 0

// GuardContext is the authenticated caller attached to the request context.
type GuardContext struct {
	ID    string
	Name  string
	Admin bool
}

// GuardFromContext returns the authenticated guard, if any.
func GuardFromContext(ctx context.Context) (GuardContext, bool) {
	g, ok := ctx.Value(guardCtxKey).(GuardContext)
	return g, ok
}

func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		next.ServeHTTP(w, r)
		logger.Printf("%s %s from=%s dur=%s", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}

// traceMiddleware opens a server span per request so handlers and repository
// calls below it show up under one trace.
func traceMiddleware(next http.Handler) http.Handler {
	tracer := otel.Tracer("campus-access-control/backend/internal/httpapi")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for the audit middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// guardHolderKey carries a mutable slot the auth middleware fills, so the
// audit middleware wrapping it can read the caller after the handler ran.
const guardHolderKey ctxKey = 2

// auditMiddleware writes one audit entry per successful mutating request,
// with action/resource derived from the route. Reads are not audited.
func auditMiddleware(logger audit.AuditLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if logger == nil || r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		holder := &GuardContext{}
		r = withClientIP(r)
		r = r.WithContext(context.WithValue(r.Context(), guardHolderKey, holder))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status >= 400 {
			return
		}
		ar := audit.ParseRoute(r.Method, r.URL.Path)
		logger.LogEvent(r.Context(), holder.ID, ar.Action, ar.Resource, "")
	})
}

// ClientIP returns the request's client address for audit entries. It is set
// on the request context by the auth middleware so audit.IPExtractor can read
// it without the *http.Request.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

const clientIPKey ctxKey = 1

func withClientIP(r *http.Request) *http.Request {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return r.WithContext(context.WithValue(r.Context(), clientIPKey, host))
}

// requireAuth parses the Bearer token and attaches the guard to the context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r = withClientIP(r)
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		guardID, guardName, admin, err := s.tokens.ValidateAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil || guardID == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", security.ErrInvalidToken.Error())
			return
		}
		g := GuardContext{ID: guardID, Name: guardName, Admin: admin}
		if holder, ok := r.Context().Value(guardHolderKey).(*GuardContext); ok {
			*holder = g
		}
		ctx := context.WithValue(r.Context(), guardCtxKey, g)
		next(w, r.WithContext(ctx))
	}
}

// requireAdmin is requireAuth plus the admin claim.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		g, _ := GuardFromContext(r.Context())
		if !g.Admin {
			writeError(w, http.StatusForbidden, "forbidden", "admin privileges required")
			return
		}
		next(w, r)
	})
}
