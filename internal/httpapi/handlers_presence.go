package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	presencedomain "campus-access-control/backend/internal/presence/domain"
	presencesvc "campus-access-control/backend/internal/presence/service"
	"campus-access-control/backend/internal/telemetry"
	telemetrydomain "campus-access-control/backend/internal/telemetry/domain"
)

type presenceRequest struct {
	PersonID     string `json:"personId"`
	CheckpointID string `json:"checkpointId"`
}

type presenceResponse struct {
	ID              string     `json:"id"`
	PersonID        string     `json:"personId"`
	PersonName      string     `json:"personName"`
	FacultyCode     string     `json:"facultyCode,omitempty"`
	SchoolCode      string     `json:"schoolCode,omitempty"`
	EnteredAt       time.Time  `json:"enteredAt"`
	ExitedAt        *time.Time `json:"exitedAt,omitempty"`
	EntryCheckpoint string     `json:"entryCheckpoint"`
	ExitCheckpoint  string     `json:"exitCheckpoint,omitempty"`
	Inside          bool       `json:"inside"`
	DwellSeconds    int64      `json:"dwellSeconds,omitempty"`
}

func presenceToResponse(rec *presencedomain.PresenceRecord) presenceResponse {
	return presenceResponse{
		ID:              rec.ID,
		PersonID:        rec.PersonID,
		PersonName:      rec.PersonName,
		FacultyCode:     rec.FacultyCode,
		SchoolCode:      rec.SchoolCode,
		EnteredAt:       rec.EnteredAt,
		ExitedAt:        rec.ExitedAt,
		EntryCheckpoint: rec.EntryCheckpoint,
		ExitCheckpoint:  rec.ExitCheckpoint,
		Inside:          rec.Inside,
		DwellSeconds:    int64(rec.DwellDuration / time.Second),
	}
}

func (s *Server) decodePresenceRequest(w http.ResponseWriter, r *http.Request) (presenceRequest, bool) {
	var req presenceRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return req, false
	}
	if req.PersonID == "" {
		writeError(w, http.StatusBadRequest, "missing_person", "personId is required")
		return req, false
	}
	return req, true
}

func (s *Server) handleRecordEntry(w http.ResponseWriter, r *http.Request) {
	g, _ := GuardFromContext(r.Context())
	req, ok := s.decodePresenceRequest(w, r)
	if !ok {
		return
	}

	rec, err := s.ledger.RecordEntry(r.Context(), req.PersonID, req.CheckpointID, g.ID)
	if err != nil {
		var inside *presencesvc.AlreadyInsideError
		switch {
		case errors.Is(err, presencesvc.ErrPersonUnknown):
			writeError(w, http.StatusNotFound, "person_unknown", err.Error())
		case errors.As(err, &inside):
			writeErrorDetails(w, http.StatusConflict, "already_inside", inside.Error(), map[string]string{
				"personId":        inside.PersonID,
				"since":           inside.Since.Format(time.RFC3339),
				"entryCheckpoint": inside.EntryCheckpoint,
			})
		default:
			s.logger.Printf("record entry error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	telemetry.EmitAsync(s.emitter, r.Context(), &telemetrydomain.AccessEvent{
		PersonID:     rec.PersonID,
		GuardID:      g.ID,
		CheckpointID: req.CheckpointID,
		Direction:    string(presencedomain.DirectionEntry),
		EventType:    "access_recorded",
		Outcome:      "applied",
		CreatedAt:    rec.EnteredAt,
	})
	writeJSON(w, http.StatusCreated, presenceToResponse(rec))
}

func (s *Server) handleRecordExit(w http.ResponseWriter, r *http.Request) {
	g, _ := GuardFromContext(r.Context())
	req, ok := s.decodePresenceRequest(w, r)
	if !ok {
		return
	}

	rec, err := s.ledger.RecordExit(r.Context(), req.PersonID, req.CheckpointID, g.ID)
	if err != nil {
		switch {
		case errors.Is(err, presencesvc.ErrNotInside):
			writeError(w, http.StatusConflict, "not_inside", err.Error())
		default:
			s.logger.Printf("record exit error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	telemetry.EmitAsync(s.emitter, r.Context(), &telemetrydomain.AccessEvent{
		PersonID:     rec.PersonID,
		GuardID:      g.ID,
		CheckpointID: req.CheckpointID,
		Direction:    string(presencedomain.DirectionExit),
		EventType:    "access_recorded",
		Outcome:      "applied",
		CreatedAt:    time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, presenceToResponse(rec))
}

func (s *Server) handleListInside(w http.ResponseWriter, r *http.Request) {
	records, err := s.ledger.ListInside(r.Context())
	if err != nil {
		s.logger.Printf("list inside error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, presenceList(records))
}

func (s *Server) handleListOverdue(w http.ResponseWriter, r *http.Request) {
	records, err := s.ledger.ListOverdue(r.Context(), s.overdue)
	if err != nil {
		s.logger.Printf("list overdue error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, presenceList(records))
}

func (s *Server) handleLastDirection(w http.ResponseWriter, r *http.Request) {
	personID := r.PathValue("personID")
	dir, err := s.ledger.LastDirection(r.Context(), personID)
	if err != nil {
		s.logger.Printf("last direction error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"personId": personID, "lastDirection": string(dir)})
}

func presenceList(records []*presencedomain.PresenceRecord) []presenceResponse {
	out := make([]presenceResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, presenceToResponse(rec))
	}
	return out
}
