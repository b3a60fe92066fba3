package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"subburn/internal/api"
	"subburn/internal/config"
	"subburn/internal/jobs"
	"subburn/internal/metrics"
	"subburn/internal/services"
	"subburn/internal/testsupport"
)

type stubProcessor struct {
	store *jobs.Store
}

func (p stubProcessor) Begin(ctx context.Context, id string, settings jobs.Settings) (*jobs.Job, error) {
	job, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "validate", "load job", id, nil)
	}
	job.Settings = settings
	job.Status = jobs.StatusProcessing
	return job, p.store.Save(ctx, job)
}

type recordingSubmitter struct{ ids []string }

func (r *recordingSubmitter) Submit(id string) error {
	r.ids = append(r.ids, id)
	return nil
}

type testServer struct {
	handler   http.Handler
	store     *jobs.Store
	submitter *recordingSubmitter
	cfg       *config.Config
}

func newTestServer(t *testing.T, mutate func(*config.Config)) testServer {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if mutate != nil {
		mutate(cfg)
	}
	store := testsupport.MustOpenStore(t, cfg)
	sub := &recordingSubmitter{}
	m := metrics.New()
	svc := api.NewJobService(api.JobServiceDeps{
		Store:     store,
		Processor: stubProcessor{store: store},
		Submitter: sub,
		UploadDir: cfg.Paths.UploadDir,
		Uploads:   m,
	})
	srv, err := newAPIServer(cfg, svc, m, nil)
	if err != nil {
		t.Fatalf("newAPIServer: %v", err)
	}
	return testServer{handler: srv.server.Handler, store: store, submitter: sub, cfg: cfg}
}

func (ts testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, field, name, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte(body)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/videos/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func uploadClip(t *testing.T, ts testServer, name string) string {
	t.Helper()
	w := ts.do(t, uploadRequest(t, "video", name, "frames"))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool             `json:"success"`
		Data    api.UploadResult `json:"data"`
	}
	decode(t, w, &resp)
	if !resp.Success || resp.Data.ID == "" || resp.Data.FileName != name || resp.Data.Status != "uploaded" {
		t.Fatalf("unexpected upload response %#v", resp)
	}
	return resp.Data.ID
}

func TestHealthRoute(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["status"] != "OK" || resp["message"] == "" {
		t.Fatalf("unexpected health payload %#v", resp)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-7")
	if got := ts.do(t, req).Header().Get("X-Request-ID"); got != "trace-7" {
		t.Fatalf("expected caller request id echoed, got %q", got)
	}
}

func TestUploadProcessStatusFlow(t *testing.T) {
	ts := newTestServer(t, nil)
	id := uploadClip(t, ts, "holiday.mp4")

	body := strings.NewReader(`{"style":"cinema","fontSize":32,"position":"top"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/videos/process/"+id, body)
	req.Header.Set("Content-Type", "application/json")
	w := ts.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var processed map[string]any
	decode(t, w, &processed)
	if processed["success"] != true || processed["message"] != "Processing started" {
		t.Fatalf("unexpected process payload %#v", processed)
	}
	if len(ts.submitter.ids) != 1 || ts.submitter.ids[0] != id {
		t.Fatalf("expected submission for %s, got %v", id, ts.submitter.ids)
	}

	w = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/status/"+id, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var status struct {
		Data api.Video `json:"data"`
	}
	decode(t, w, &status)
	if status.Data.Status != "processing" || status.Data.Settings.FontColor != "#FFD700" || status.Data.Settings.Position != "top" {
		t.Fatalf("unexpected status %#v", status.Data)
	}
}

func TestProcessWithEmptyBodyUsesDefaults(t *testing.T) {
	ts := newTestServer(t, nil)
	id := uploadClip(t, ts, "clip.mp4")

	w := ts.do(t, httptest.NewRequest(http.MethodPost, "/api/videos/process/"+id, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	job, _ := ts.store.Get(context.Background(), id)
	if job.Settings != jobs.DefaultSettings() {
		t.Fatalf("expected default settings, got %#v", job.Settings)
	}
}

func TestProcessRejectsBadSettings(t *testing.T) {
	ts := newTestServer(t, nil)
	id := uploadClip(t, ts, "clip.mp4")

	req := httptest.NewRequest(http.MethodPost, "/api/videos/process/"+id, strings.NewReader(`{"position":"left"}`))
	req.Header.Set("Content-Type", "application/json")
	if w := ts.do(t, req); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	req = httptest.NewRequest(http.MethodPost, "/api/videos/process/"+id, strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	if w := ts.do(t, req); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", w.Code)
	}
}

func TestUploadWithoutFileIsBadRequest(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(t, uploadRequest(t, "attachment", "clip.mp4", "x"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["error"] != "No video uploaded" {
		t.Fatalf("unexpected error payload %#v", resp)
	}
}

func TestUploadRateLimited(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.Upload.Rate = "1-M" })
	uploadClip(t, ts, "first.mp4")

	w := ts.do(t, uploadRequest(t, "video", "second.mp4", "x"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestUnknownJobIsNotFound(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, target := range []string{
		"/api/videos/status/missing",
		"/api/videos/download/missing",
		"/api/videos/download-srt/missing",
	} {
		if w := ts.do(t, httptest.NewRequest(http.MethodGet, target, nil)); w.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", target, w.Code)
		}
	}
	if w := ts.do(t, httptest.NewRequest(http.MethodDelete, "/api/videos/missing", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("delete: expected 404, got %d", w.Code)
	}
}

func TestDownloadsServeAttachments(t *testing.T) {
	ts := newTestServer(t, nil)
	id := uploadClip(t, ts, "talk.mp4")
	ctx := context.Background()

	if w := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/download/"+id, nil)); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before completion, got %d", w.Code)
	}

	job, _ := ts.store.Get(ctx, id)
	job.Status = jobs.StatusCompleted
	job.ProcessedPath = filepath.Join(ts.cfg.Paths.ProcessedDir, id+"_subtitled.mp4")
	job.CaptionPath = filepath.Join(ts.cfg.Paths.ProcessedDir, id+".srt")
	if err := ts.store.Save(ctx, job); err != nil {
		t.Fatalf("Save: %v", err)
	}
	testsupport.WriteFile(t, job.ProcessedPath, 16)
	testsupport.WriteFile(t, job.CaptionPath, 8)

	w := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/download/"+id, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "subtitled_talk.mp4") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	w = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/download-srt/"+id, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "talk.srt") {
		t.Fatalf("unexpected disposition %q", cd)
	}
}

func TestListStylesAndDelete(t *testing.T) {
	ts := newTestServer(t, nil)
	id := uploadClip(t, ts, "clip.mp4")

	w := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/all", nil))
	var list struct {
		Data []api.Video `json:"data"`
	}
	decode(t, w, &list)
	if len(list.Data) != 1 || list.Data[0].ID != id {
		t.Fatalf("unexpected list %#v", list.Data)
	}

	w = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/styles", nil))
	var styles struct {
		Data []api.StylePreset `json:"data"`
	}
	decode(t, w, &styles)
	if len(styles.Data) != 5 {
		t.Fatalf("expected 5 presets, got %d", len(styles.Data))
	}

	w = ts.do(t, httptest.NewRequest(http.MethodDelete, "/api/videos/"+id, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if job, _ := ts.store.Get(context.Background(), id); job != nil {
		t.Fatalf("expected job removed, got %#v", job)
	}
}

func TestAuthTokenRequired(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.Paths.APIToken = "secret" })

	if w := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/videos/all", nil)); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/videos/all", nil)
	req.Header.Set("Authorization", "Bearer secret")
	if w := ts.do(t, req); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
	if w := ts.do(t, httptest.NewRequest(http.MethodGet, "/", nil)); w.Code != http.StatusOK {
		t.Fatalf("expected health open without token, got %d", w.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.Metrics.Enabled = true })
	uploadClip(t, ts, "clip.mp4")

	w := ts.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "subburn_upload_bytes_total") {
		t.Fatalf("expected upload metric in output")
	}
}

func TestMetricsRouteDisabled(t *testing.T) {
	ts := newTestServer(t, nil)
	if w := ts.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with metrics disabled, got %d", w.Code)
	}
}
