package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	sessiondomain "campus-access-control/backend/internal/session/domain"
	sessionsvc "campus-access-control/backend/internal/session/service"
	"campus-access-control/backend/internal/telemetry"
	telemetrydomain "campus-access-control/backend/internal/telemetry/domain"
)

type startSessionRequest struct {
	CheckpointID string `json:"checkpointId"`
	DeviceInfo   string `json:"deviceInfo,omitempty"`
}

type sessionResponse struct {
	Token          string     `json:"token"`
	GuardID        string     `json:"guardId"`
	GuardName      string     `json:"guardName"`
	CheckpointID   string     `json:"checkpointId"`
	StartedAt      time.Time  `json:"startedAt"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
	Active         bool       `json:"active"`
	EndedAt        *time.Time `json:"endedAt,omitempty"`
}

func sessionToResponse(sess *sessiondomain.GuardSession) sessionResponse {
	return sessionResponse{
		Token:          sess.ID,
		GuardID:        sess.GuardID,
		GuardName:      sess.GuardName,
		CheckpointID:   sess.CheckpointID,
		StartedAt:      sess.StartedAt,
		LastActivityAt: sess.LastActivityAt,
		Active:         sess.Active,
		EndedAt:        sess.EndedAt,
	}
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	g, _ := GuardFromContext(r.Context())

	var req startSessionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	if req.CheckpointID == "" {
		writeError(w, http.StatusBadRequest, "missing_checkpoint", "checkpointId is required")
		return
	}

	sess, err := s.registry.Start(r.Context(), g.ID, g.Name, req.CheckpointID, req.DeviceInfo)
	if err != nil {
		var owned *sessionsvc.CheckpointOwnedError
		if errors.As(err, &owned) {
			writeErrorDetails(w, http.StatusConflict, "checkpoint_owned", owned.Error(), map[string]string{
				"checkpointId": owned.CheckpointID,
				"guardId":      owned.GuardID,
				"guardName":    owned.GuardName,
				"startedAt":    owned.StartedAt.Format(time.RFC3339),
			})
			return
		}
		s.logger.Printf("start session error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	telemetry.EmitAsync(s.emitter, r.Context(), &telemetrydomain.AccessEvent{
		GuardID:      g.ID,
		CheckpointID: sess.CheckpointID,
		EventType:    "session_started",
		CreatedAt:    sess.StartedAt,
	})
	writeJSON(w, http.StatusCreated, sessionToResponse(sess))
}

type sessionTokenRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req sessionTokenRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	at, err := s.registry.Heartbeat(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, sessionsvc.ErrSessionExpired) {
			writeError(w, http.StatusNotFound, "session_expired", err.Error())
			return
		}
		s.logger.Printf("heartbeat error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]time.Time{"lastActivityAt": at})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	g, _ := GuardFromContext(r.Context())

	var req sessionTokenRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	if err := s.registry.End(r.Context(), req.Token); err != nil {
		if errors.Is(err, sessionsvc.ErrSessionExpired) {
			writeError(w, http.StatusNotFound, "session_expired", err.Error())
			return
		}
		s.logger.Printf("end session error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	telemetry.EmitAsync(s.emitter, r.Context(), &telemetrydomain.AccessEvent{
		GuardID:   g.ID,
		EventType: "session_ended",
		CreatedAt: time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

type forceEndRequest struct {
	GuardID string `json:"guardId"`
}

func (s *Server) handleForceEndSessions(w http.ResponseWriter, r *http.Request) {
	admin, _ := GuardFromContext(r.Context())

	var req forceEndRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	if req.GuardID == "" {
		writeError(w, http.StatusBadRequest, "missing_guard", "guardId is required")
		return
	}

	n, err := s.registry.ForceEndAll(r.Context(), req.GuardID)
	if err != nil {
		s.logger.Printf("force end error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	telemetry.EmitAsync(s.emitter, r.Context(), &telemetrydomain.AccessEvent{
		GuardID:   admin.ID,
		EventType: "sessions_force_ended",
		Metadata:  req.GuardID,
		CreatedAt: time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, map[string]int64{"closed": n})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.registry.ListActive(r.Context())
	if err != nil {
		s.logger.Printf("list sessions error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionToResponse(sess))
	}
	writeJSON(w, http.StatusOK, out)
}
