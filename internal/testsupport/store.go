package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"subburn/internal/config"
	"subburn/internal/jobs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewUploadedJob writes a small source video under the upload directory and
// records it as an uploaded job.
func NewUploadedJob(t testing.TB, cfg *config.Config, store *jobs.Store, originalName string) *jobs.Job {
	t.Helper()

	source := filepath.Join(cfg.Paths.UploadDir, "src-"+filepath.Base(originalName))
	WriteFile(t, source, 1024)
	job, err := store.Create(context.Background(), originalName, source)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return job
}
