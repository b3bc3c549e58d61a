package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"scriptdna/internal/export"
	"scriptdna/internal/generation"
	"scriptdna/internal/pipeline"
	"scriptdna/internal/services"
	"scriptdna/internal/stages"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:03,000\nHello there.\n\n2\n00:00:03,000 --> 00:00:05,000\nWelcome back.\n"

type fakeGenerator struct {
	mu      sync.Mutex
	partErr error
	parts   int
}

func (g *fakeGenerator) Generate(_ context.Context, req generation.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch req.Stage {
	case stages.StageAnalyze:
		return `{"hookType":"Hello"}`, nil
	case stages.StageDNA:
		return `{"personaName":"Greeter","systemPrompt":"Be kind."}`, nil
	case stages.StageStrategies:
		return `[{"id":"one","title":"Kindness Daily"}]`, nil
	default:
		if g.partErr != nil {
			return "", g.partErr
		}
		g.parts++
		return fmt.Sprintf(`[{"text":"Paragraph %d."}]`, g.parts), nil
	}
}

type recordingNotifier struct {
	mu       sync.Mutex
	exported []string
}

func (n *recordingNotifier) NotifyScriptExported(_ context.Context, topic string, parts int, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.exported = append(n.exported, fmt.Sprintf("%s/%d", topic, parts))
	return nil
}

func (n *recordingNotifier) NotifyStageFailed(context.Context, string, error) error { return nil }
func (n *recordingNotifier) TestNotification(context.Context) error                 { return nil }

func newTestServer(t *testing.T, gen generation.Generator) *Server {
	t.Helper()
	writer, err := export.NewWriter(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	return NewServer(Options{
		Generator:     gen,
		Provider:      "fake",
		Exporter:      writer,
		Notifier:      &recordingNotifier{},
		DefaultScript: stages.ScriptConfig{TargetWordCount: 200, Parts: 2},
	})
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) pipeline.Snapshot {
	t.Helper()
	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session: %v (%s)", err, rec.Body.String())
	}
	return resp.Session
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func createSession(t *testing.T, srv *Server) string {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/sessions?name=talk.srt", sampleSRT)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	return decodeSession(t, rec).ID
}

func TestFullFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})
	id := createSession(t, srv)
	base := "/api/sessions/" + id

	for _, step := range []string{"/analyze", "/dna", "/strategies"} {
		if rec := do(t, srv, http.MethodPost, base+step, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d: %s", step, rec.Code, rec.Body.String())
		}
	}
	if rec := do(t, srv, http.MethodPost, base+"/strategy", `{"id":"one"}`); rec.Code != http.StatusOK {
		t.Fatalf("select status = %d: %s", rec.Code, rec.Body.String())
	}
	rec := do(t, srv, http.MethodPost, base+"/script/config", `{"instructions":"short"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("config status = %d: %s", rec.Code, rec.Body.String())
	}
	if cfg := decodeSession(t, rec).Config; cfg == nil || cfg.Parts != 2 || cfg.TargetWordCount != 200 || cfg.Instructions != "short" {
		t.Fatalf("config = %+v", cfg)
	}
	for i := 0; i < 2; i++ {
		if rec := do(t, srv, http.MethodPost, base+"/script/next", ""); rec.Code != http.StatusOK {
			t.Fatalf("next status = %d: %s", rec.Code, rec.Body.String())
		}
	}
	rec = do(t, srv, http.MethodPost, base+"/script/next", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("extra part status = %d", rec.Code)
	}

	rec = do(t, srv, http.MethodGet, base+"/export", "")
	want := "TITLE: Kindness Daily\n\n\n\n=== PART 1 ===\n\nParagraph 1.\n\n=== PART 2 ===\n\nParagraph 2."
	if rec.Code != http.StatusOK || rec.Body.String() != want {
		t.Fatalf("export = %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "full-narrator-script-kindness-daily.txt") {
		t.Fatalf("content disposition = %q", got)
	}
	rec = do(t, srv, http.MethodGet, base+"/export?part=2", "")
	if rec.Body.String() != "Paragraph 2." {
		t.Fatalf("part export = %q", rec.Body.String())
	}

	rec = do(t, srv, http.MethodPost, base+"/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export files status = %d: %s", rec.Code, rec.Body.String())
	}
	var files ExportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(files.Files) != 3 {
		t.Fatalf("files = %v", files.Files)
	}
	if _, err := os.Stat(filepath.Join(srv.opts.Exporter.Dir(), "script-part-1.txt")); err != nil {
		t.Fatalf("part file missing: %v", err)
	}
	notifier := srv.opts.Notifier.(*recordingNotifier)
	if len(notifier.exported) != 1 || notifier.exported[0] != "Kindness Daily/2" {
		t.Fatalf("notifications = %v", notifier.exported)
	}
}

func TestPrerequisiteMapsToConflict(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})
	id := createSession(t, srv)
	rec := do(t, srv, http.MethodPost, "/api/sessions/"+id+"/dna", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Kind != services.KindPrerequisite {
		t.Fatalf("kind = %q", resp.Kind)
	}
}

func TestStageFailureMapsToBadGateway(t *testing.T) {
	gen := &fakeGenerator{partErr: errors.New(`http 500: {"error":"upstream exploded"}`)}
	srv := newTestServer(t, gen)
	id := createSession(t, srv)
	base := "/api/sessions/" + id
	for _, step := range []string{"/analyze", "/dna", "/strategies"} {
		do(t, srv, http.MethodPost, base+step, "")
	}
	do(t, srv, http.MethodPost, base+"/strategy", `{"id":"one"}`)
	do(t, srv, http.MethodPost, base+"/script/config", `{}`)

	rec := do(t, srv, http.MethodPost, base+"/script/next", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeError(t, rec)
	if resp.Error != "Failed at part 1: Script request failed for part 1" {
		t.Fatalf("error = %q", resp.Error)
	}
	if strings.Contains(resp.Error, "upstream exploded") || !resp.Retryable {
		t.Fatalf("unexpected error payload: %+v", resp)
	}
}

func TestCreateSessionWithEmptyTranscript(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})
	rec := do(t, srv, http.MethodPost, "/api/sessions?name=empty.srt", "garbage\nmore\nstill")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	snap := decodeSession(t, rec)
	if snap.Progress != pipeline.ProgressIngested || snap.Transcript == nil || len(snap.Transcript.Segments) != 0 {
		t.Fatalf("unexpected session: %+v", snap)
	}
	if rec := do(t, srv, http.MethodPost, "/api/sessions/"+snap.ID+"/analyze", ""); rec.Code != http.StatusOK {
		t.Fatalf("analyze status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInvalidInputs(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})
	if rec := do(t, srv, http.MethodGet, "/api/sessions/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing session status = %d", rec.Code)
	}
	id := createSession(t, srv)
	base := "/api/sessions/" + id
	for _, step := range []string{"/analyze", "/dna", "/strategies"} {
		do(t, srv, http.MethodPost, base+step, "")
	}
	if rec := do(t, srv, http.MethodPost, base+"/strategy", `{"id":"nope"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown strategy status = %d", rec.Code)
	}
	do(t, srv, http.MethodPost, base+"/strategy", `{"id":"one"}`)
	if rec := do(t, srv, http.MethodPost, base+"/script/config", `{"parts":40}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid parts status = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, base+"/export", ""); rec.Code != http.StatusConflict {
		t.Fatalf("export without parts status = %d", rec.Code)
	}
}

func TestDeleteSessionAndResetScript(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})
	id := createSession(t, srv)
	if rec := do(t, srv, http.MethodDelete, "/api/sessions/"+id+"/script", ""); rec.Code != http.StatusOK {
		t.Fatalf("reset script status = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodDelete, "/api/sessions/"+id, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodDelete, "/api/sessions/"+id, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeGenerator{})
	srv.opts.Health = func(context.Context) error {
		return services.Wrap(services.ErrConfiguration, "health", "openrouter", "credentials rejected", nil)
	}
	rec := do(t, srv, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("shallow health status = %d", rec.Code)
	}
	rec = do(t, srv, http.MethodGet, "/api/health?deep=1", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("deep health status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" || resp.Provider != "fake" {
		t.Fatalf("health = %+v", resp)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.Wrap(services.ErrBusy, "x", "", "", nil), http.StatusConflict},
		{pipeline.ErrDiscarded, http.StatusConflict},
		{services.Wrap(services.ErrTimeout, "x", "", "", nil), http.StatusGatewayTimeout},
		{&stages.StageError{Stage: "dna", Message: "No DNA extracted from model", Kind: services.ErrNoContent}, http.StatusBadGateway},
		{fmt.Errorf("%w: abc", errSessionNotFound), http.StatusNotFound},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
