package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	auditpkg "campus-access-control/backend/internal/audit"
	auditdomain "campus-access-control/backend/internal/audit/domain"
	authsvc "campus-access-control/backend/internal/auth/service"
	directorydomain "campus-access-control/backend/internal/directory/domain"
	guarddomain "campus-access-control/backend/internal/guard/domain"
	"campus-access-control/backend/internal/httpapi"
	presencedomain "campus-access-control/backend/internal/presence/domain"
	presencesvc "campus-access-control/backend/internal/presence/service"
	"campus-access-control/backend/internal/security"
	sessiondomain "campus-access-control/backend/internal/session/domain"
	sessionsvc "campus-access-control/backend/internal/session/service"
	"campus-access-control/backend/internal/transition"
)

// ── in-memory fakes ──

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*sessiondomain.GuardSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*sessiondomain.GuardSession)}
}

func (r *memSessionRepo) GetByToken(ctx context.Context, token string) (*sessiondomain.GuardSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *memSessionRepo) ActiveByCheckpoint(ctx context.Context, checkpointID string) (*sessiondomain.GuardSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.Active && s.CheckpointID == checkpointID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) ListActive(ctx context.Context) ([]*sessiondomain.GuardSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*sessiondomain.GuardSession
	for _, s := range r.sessions {
		if s.Active {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSessionRepo) CreateActive(ctx context.Context, s *sessiondomain.GuardSession) (transition.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.Active && existing.CheckpointID == s.CheckpointID {
			return transition.Conflict, nil
		}
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return transition.Applied, nil
}

func (r *memSessionRepo) Touch(ctx context.Context, token string, at time.Time) (transition.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || !s.Active {
		return transition.NotFound, nil
	}
	s.LastActivityAt = at
	return transition.Applied, nil
}

func (r *memSessionRepo) Close(ctx context.Context, token string, at time.Time) (transition.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || !s.Active {
		return transition.NotFound, nil
	}
	s.Active = false
	s.EndedAt = &at
	return transition.Applied, nil
}

func (r *memSessionRepo) CloseAllByGuard(ctx context.Context, guardID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		if s.Active && s.GuardID == guardID {
			s.Active = false
			s.EndedAt = &at
			n++
		}
	}
	return n, nil
}

func (r *memSessionRepo) CloseStale(ctx context.Context, cutoff, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		if s.Active && s.LastActivityAt.Before(cutoff) {
			s.Active = false
			s.EndedAt = &at
			n++
		}
	}
	return n, nil
}

type memPresenceRepo struct {
	mu      sync.Mutex
	records []*presencedomain.PresenceRecord
}

func (r *memPresenceRepo) InsideByPerson(ctx context.Context, personID string) (*presencedomain.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insideLocked(personID), nil
}

func (r *memPresenceRepo) insideLocked(personID string) *presencedomain.PresenceRecord {
	for _, rec := range r.records {
		if rec.Inside && rec.PersonID == personID {
			cp := *rec
			return &cp
		}
	}
	return nil
}

func (r *memPresenceRepo) Latest(ctx context.Context, personID string) (*presencedomain.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *presencedomain.PresenceRecord
	for _, rec := range r.records {
		if rec.PersonID != personID {
			continue
		}
		if latest == nil || rec.EnteredAt.After(latest.EnteredAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *memPresenceRepo) CreateInside(ctx context.Context, p *presencedomain.PresenceRecord) (transition.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insideLocked(p.PersonID) != nil {
		return transition.Conflict, nil
	}
	cp := *p
	r.records = append(r.records, &cp)
	return transition.Applied, nil
}

func (r *memPresenceRepo) CloseInside(ctx context.Context, personID, checkpointID, guardID string, at time.Time) (transition.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Inside && rec.PersonID == personID {
			rec.Inside = false
			exited := at
			rec.ExitedAt = &exited
			rec.ExitCheckpoint = checkpointID
			rec.ExitGuard = guardID
			rec.DwellDuration = at.Sub(rec.EnteredAt)
			return transition.Applied, nil
		}
	}
	return transition.NotFound, nil
}

func (r *memPresenceRepo) ListInside(ctx context.Context) ([]*presencedomain.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*presencedomain.PresenceRecord
	for _, rec := range r.records {
		if rec.Inside {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memPresenceRepo) ListInsideSince(ctx context.Context, cutoff time.Time) ([]*presencedomain.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*presencedomain.PresenceRecord
	for _, rec := range r.records {
		if rec.Inside && !rec.EnteredAt.After(cutoff) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memDirectory struct {
	students map[string]*directorydomain.Student
	visitors map[string]*directorydomain.Visitor
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		students: map[string]*directorydomain.Student{
			"S100": {ID: "S100", Name: "Ana Quispe", Enrolled: true, FacultyCode: "FIIS", SchoolCode: "SIS"},
		},
		visitors: map[string]*directorydomain.Visitor{
			"V200": {ID: "V200", Name: "Guest Visitor"},
		},
	}
}

func (d *memDirectory) FindPerson(ctx context.Context, id string) (*directorydomain.Person, error) {
	if s, ok := d.students[id]; ok && s.Enrolled {
		return &directorydomain.Person{
			ID: s.ID, Name: s.Name, Kind: directorydomain.KindStudent,
			FacultyCode: s.FacultyCode, SchoolCode: s.SchoolCode,
		}, nil
	}
	if v, ok := d.visitors[id]; ok {
		return &directorydomain.Person{ID: v.ID, Name: v.Name, Kind: directorydomain.KindVisitor}, nil
	}
	return nil, nil
}

func (d *memDirectory) GetStudent(ctx context.Context, id string) (*directorydomain.Student, error) {
	return d.students[id], nil
}

func (d *memDirectory) GetVisitor(ctx context.Context, id string) (*directorydomain.Visitor, error) {
	return d.visitors[id], nil
}

func (d *memDirectory) ListFaculties(ctx context.Context) ([]*directorydomain.Faculty, error) {
	return []*directorydomain.Faculty{{Code: "FIIS", Name: "Industrial and Systems Engineering"}}, nil
}

func (d *memDirectory) ListSchools(ctx context.Context, facultyCode string) ([]*directorydomain.School, error) {
	return []*directorydomain.School{{Code: "SIS", Name: "Systems Engineering", FacultyCode: "FIIS"}}, nil
}

type memGuardRepo struct {
	mu      sync.Mutex
	byEmail map[string]*guarddomain.Guard
}

func (r *memGuardRepo) GetByEmail(ctx context.Context, email string) (*guarddomain.Guard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byEmail[email], nil
}

func (r *memGuardRepo) Create(ctx context.Context, g *guarddomain.Guard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[g.Email] = g
	return nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*auditdomain.AuditLog
}

func (r *memAuditRepo) GetByID(ctx context.Context, id string) (*auditdomain.AuditLog, error) {
	return nil, nil
}

func (r *memAuditRepo) Create(ctx context.Context, a *auditdomain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, a)
	return nil
}

func (r *memAuditRepo) List(ctx context.Context, limit, offset int32) ([]*auditdomain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*auditdomain.AuditLog, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *memAuditRepo) ListByGuard(ctx context.Context, guardID string, limit, offset int32) ([]*auditdomain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auditdomain.AuditLog
	for _, e := range r.entries {
		if e.GuardID == guardID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ── harness ──

type testEnv struct {
	ts       *httptest.Server
	auditRep *memAuditRepo
	guards   *memGuardRepo
	tokens   *security.TokenProvider
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	guards := &memGuardRepo{byEmail: make(map[string]*guarddomain.Guard)}
	auditRep := &memAuditRepo{}
	directory := newMemDirectory()

	auth := authsvc.NewAuthService(guards, security.NewHasher(4), tokens)
	registry := sessionsvc.NewRegistry(newMemSessionRepo())
	ledger := presencesvc.NewLedger(&memPresenceRepo{}, directory)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:    log.New(io.Discard, "", 0),
		Addr:      ":0",
		Auth:      auth,
		Registry:  registry,
		Ledger:    ledger,
		Directory: directory,
		Tokens:    tokens,
		AuditLog:  auditpkg.NewLogger(auditRep, httpapi.ClientIP),
		AuditRepo: auditRep,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, auditRep: auditRep, guards: guards, tokens: tokens}
}

func (e *testEnv) token(t *testing.T, guardID, guardName string, admin bool) string {
	t.Helper()
	tok, _, err := e.tokens.IssueAccess(guardID, guardName, admin)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// ── tests ──

func TestHealth(t *testing.T) {
	env := newTestServer(t)
	resp, err := http.Get(env.ts.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	env := newTestServer(t)
	resp := env.do(t, http.MethodGet, "/v1/sessions", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	env := newTestServer(t)
	resp := env.do(t, http.MethodGet, "/v1/sessions", "not-a-jwt", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	env := newTestServer(t)
	adminTok := env.token(t, "admin-1", "Chief", true)

	resp := env.do(t, http.MethodPost, "/v1/guards", adminTok, map[string]string{
		"email": "guard@campus.edu", "password": "Str0ng-Passw0rd!", "name": "Gate Guard",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register guard: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/v1/login", "", map[string]string{
		"email": "guard@campus.edu", "password": "Str0ng-Passw0rd!",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody[map[string]any](t, resp)
	if body["accessToken"] == "" {
		t.Error("access token empty")
	}
	if body["guardName"] != "Gate Guard" {
		t.Errorf("guardName = %v", body["guardName"])
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestServer(t)
	resp := env.do(t, http.MethodPost, "/v1/login", "", map[string]string{
		"email": "nobody@campus.edu", "password": "whatever-123-X!",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRegisterGuard_RequiresAdmin(t *testing.T) {
	env := newTestServer(t)
	guardTok := env.token(t, "g1", "Guard", false)
	resp := env.do(t, http.MethodPost, "/v1/guards", guardTok, map[string]string{
		"email": "x@campus.edu", "password": "Str0ng-Passw0rd!", "name": "X",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestServer(t)
	tok := env.token(t, "g1", "Guard One", false)

	resp := env.do(t, http.MethodPost, "/v1/sessions", tok, map[string]string{
		"checkpointId": "gate-1", "deviceInfo": "android/tablet-7",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d", resp.StatusCode)
	}
	started := decodeBody[map[string]any](t, resp)
	token, _ := started["token"].(string)
	if token == "" {
		t.Fatal("session token empty")
	}

	resp = env.do(t, http.MethodPost, "/v1/sessions/heartbeat", tok, map[string]string{"token": token})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("heartbeat: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/v1/sessions", tok, nil)
	active := decodeBody[[]map[string]any](t, resp)
	if len(active) != 1 {
		t.Fatalf("expected 1 active session, got %d", len(active))
	}

	resp = env.do(t, http.MethodPost, "/v1/sessions/end", tok, map[string]string{"token": token})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Second end is rejected; the closed state is never rewritten.
	resp = env.do(t, http.MethodPost, "/v1/sessions/end", tok, map[string]string{"token": token})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("re-end: expected 404, got %d", resp.StatusCode)
	}
}

func TestSessionConflict_ReportsOwner(t *testing.T) {
	env := newTestServer(t)
	tok1 := env.token(t, "g1", "Guard One", false)
	tok2 := env.token(t, "g2", "Guard Two", false)

	resp := env.do(t, http.MethodPost, "/v1/sessions", tok1, map[string]string{"checkpointId": "gate-1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/v1/sessions", tok2, map[string]string{"checkpointId": "gate-1"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("conflict: expected 409, got %d", resp.StatusCode)
	}
	body := decodeBody[map[string]any](t, resp)
	details, _ := body["details"].(map[string]any)
	if details["guardId"] != "g1" || details["guardName"] != "Guard One" {
		t.Errorf("conflict details = %v", details)
	}
}

func TestForceEnd_RequiresAdmin(t *testing.T) {
	env := newTestServer(t)
	guardTok := env.token(t, "g1", "Guard", false)
	adminTok := env.token(t, "admin-1", "Chief", true)

	resp := env.do(t, http.MethodPost, "/v1/sessions", guardTok, map[string]string{"checkpointId": "gate-2"})
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/v1/sessions/force-end", guardTok, map[string]string{"guardId": "g1"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin force-end: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/v1/sessions/force-end", adminTok, map[string]string{"guardId": "g1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin force-end: expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody[map[string]float64](t, resp)
	if body["closed"] != 1 {
		t.Errorf("closed = %v, want 1", body["closed"])
	}
}

func TestPresence_EntryExitFlow(t *testing.T) {
	env := newTestServer(t)
	tok := env.token(t, "g1", "Guard One", false)

	resp := env.do(t, http.MethodPost, "/v1/presence/entry", tok, map[string]string{
		"personId": "S100", "checkpointId": "gate-1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("entry: expected 201, got %d", resp.StatusCode)
	}
	entered := decodeBody[map[string]any](t, resp)
	if entered["personName"] != "Ana Quispe" || entered["inside"] != true {
		t.Errorf("entry body = %v", entered)
	}

	// Same person cannot enter twice.
	resp = env.do(t, http.MethodPost, "/v1/presence/entry", tok, map[string]string{
		"personId": "S100", "checkpointId": "gate-2",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("re-entry: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/v1/presence", tok, nil)
	inside := decodeBody[[]map[string]any](t, resp)
	if len(inside) != 1 {
		t.Fatalf("expected 1 inside, got %d", len(inside))
	}

	resp = env.do(t, http.MethodPost, "/v1/presence/exit", tok, map[string]string{
		"personId": "S100", "checkpointId": "gate-1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("exit: expected 200, got %d", resp.StatusCode)
	}
	exited := decodeBody[map[string]any](t, resp)
	if exited["inside"] != false {
		t.Errorf("exit body = %v", exited)
	}

	// Exit again fails; nobody is inside.
	resp = env.do(t, http.MethodPost, "/v1/presence/exit", tok, map[string]string{"personId": "S100"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("re-exit: expected 409, got %d", resp.StatusCode)
	}
}

func TestPresence_UnknownPerson(t *testing.T) {
	env := newTestServer(t)
	tok := env.token(t, "g1", "Guard One", false)
	resp := env.do(t, http.MethodPost, "/v1/presence/entry", tok, map[string]string{
		"personId": "nobody", "checkpointId": "gate-1",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPresence_LastDirection(t *testing.T) {
	env := newTestServer(t)
	tok := env.token(t, "g1", "Guard One", false)

	resp := env.do(t, http.MethodGet, "/v1/presence/V200/last-direction", tok, nil)
	body := decodeBody[map[string]string](t, resp)
	if body["lastDirection"] != "exit" {
		t.Errorf("no history: lastDirection = %q, want exit", body["lastDirection"])
	}

	r := env.do(t, http.MethodPost, "/v1/presence/entry", tok, map[string]string{"personId": "V200"})
	r.Body.Close()

	resp = env.do(t, http.MethodGet, "/v1/presence/V200/last-direction", tok, nil)
	body = decodeBody[map[string]string](t, resp)
	if body["lastDirection"] != "entry" {
		t.Errorf("after entry: lastDirection = %q, want entry", body["lastDirection"])
	}
}

func TestDirectory_Listings(t *testing.T) {
	env := newTestServer(t)
	tok := env.token(t, "g1", "Guard One", false)

	resp := env.do(t, http.MethodGet, "/v1/faculties", tok, nil)
	faculties := decodeBody[[]map[string]string](t, resp)
	if len(faculties) != 1 || faculties[0]["code"] != "FIIS" {
		t.Errorf("faculties = %v", faculties)
	}

	resp = env.do(t, http.MethodGet, "/v1/schools?faculty=FIIS", tok, nil)
	schools := decodeBody[[]map[string]string](t, resp)
	if len(schools) != 1 || schools[0]["code"] != "SIS" {
		t.Errorf("schools = %v", schools)
	}
}

func TestAudit_MutatingRequestsRecorded(t *testing.T) {
	env := newTestServer(t)
	tok := env.token(t, "g1", "Guard One", false)

	resp := env.do(t, http.MethodPost, "/v1/sessions", tok, map[string]string{"checkpointId": "gate-1"})
	resp.Body.Close()

	// The audit write happens after the response is flushed; poll briefly.
	deadline := time.Now().Add(time.Second)
	for {
		env.auditRep.mu.Lock()
		n := len(env.auditRep.entries)
		env.auditRep.mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	env.auditRep.mu.Lock()
	defer env.auditRep.mu.Unlock()
	if len(env.auditRep.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(env.auditRep.entries))
	}
	e := env.auditRep.entries[0]
	if e.GuardID != "g1" || e.Action != "create" || e.Resource != "session" {
		t.Errorf("audit entry = %+v", e)
	}
}

func TestAuditList_RequiresAdmin(t *testing.T) {
	env := newTestServer(t)
	guardTok := env.token(t, "g1", "Guard", false)
	adminTok := env.token(t, "admin-1", "Chief", true)

	resp := env.do(t, http.MethodGet, "/v1/audit", guardTok, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/v1/audit", adminTok, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", resp.StatusCode)
	}
}
