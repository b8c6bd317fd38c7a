package httpapi

import (
	"net/http"
	"strconv"
	"time"

	auditdomain "campus-access-control/backend/internal/audit/domain"
)

type facultyResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type schoolResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	FacultyCode string `json:"facultyCode"`
}

func (s *Server) handleListFaculties(w http.ResponseWriter, r *http.Request) {
	faculties, err := s.directory.ListFaculties(r.Context())
	if err != nil {
		s.logger.Printf("list faculties error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	out := make([]facultyResponse, 0, len(faculties))
	for _, f := range faculties {
		out = append(out, facultyResponse{Code: f.Code, Name: f.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := s.directory.ListSchools(r.Context(), r.URL.Query().Get("faculty"))
	if err != nil {
		s.logger.Printf("list schools error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	out := make([]schoolResponse, 0, len(schools))
	for _, sc := range schools {
		out = append(out, schoolResponse{Code: sc.Code, Name: sc.Name, FacultyCode: sc.FacultyCode})
	}
	writeJSON(w, http.StatusOK, out)
}

type auditEntryResponse struct {
	ID        string    `json:"id"`
	GuardID   string    `json:"guardId,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	var entries []*auditdomain.AuditLog
	var err error
	if guardID := r.URL.Query().Get("guard"); guardID != "" {
		entries, err = s.auditRepo.ListByGuard(r.Context(), guardID, limit, offset)
	} else {
		entries, err = s.auditRepo.List(r.Context(), limit, offset)
	}
	if err != nil {
		s.logger.Printf("list audit error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID: e.ID, GuardID: e.GuardID, Action: e.Action, Resource: e.Resource,
			IP: e.IP, Metadata: e.Metadata, CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func queryInt(r *http.Request, key string, fallback int32) int32 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n < 0 {
		return fallback
	}
	return int32(n)
}
