package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"subburn/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "render", "ffmpeg", "burn-in failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"render", "ffmpeg", "burn-in failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(services.ErrPersistence, "", "", "", nil)
	if err.Error() != "persistence error: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestKindSurvivesFurtherWrapping(t *testing.T) {
	tests := []struct {
		marker error
		want   string
	}{
		{services.ErrMissingSourceFile, "missing_source_file"},
		{services.ErrExternalTool, "external_tool"},
		{services.ErrTranscriptionProvider, "transcription_provider"},
		{services.ErrTranscriptionTimeout, "transcription_timeout"},
		{services.ErrPersistence, "persistence"},
		{services.ErrNotFound, "not_found"},
	}
	for _, tt := range tests {
		err := fmt.Errorf("pipeline: %w", services.Wrap(tt.marker, "stage", "op", "msg", nil))
		if got := services.Kind(err); got != tt.want {
			t.Fatalf("Kind(%v) = %q, want %q", tt.marker, got, tt.want)
		}
	}
	if got := services.Kind(errors.New("plain")); got != "unknown" {
		t.Fatalf("expected unknown for unmarked error, got %q", got)
	}
	if got := services.Kind(nil); got != "" {
		t.Fatalf("expected empty kind for nil, got %q", got)
	}
}
