package api

import (
	"testing"
	"time"

	"subburn/internal/jobs"
)

func TestFromJobReportsArtifactsAndTimestamps(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	job := &jobs.Job{
		ID:            "job-1",
		OriginalName:  "talk.mp4",
		Status:        jobs.StatusCompleted,
		Settings:      jobs.DefaultSettings(),
		Transcript:    "hello",
		CaptionPath:   "/processed/job-1.srt",
		ProcessedPath: "/processed/job-1_subtitled.mp4",
		CreatedAt:     created,
		UpdatedAt:     created.Add(time.Minute),
	}

	dto := FromJob(job)
	if dto.ID != "job-1" || dto.Status != "completed" || dto.Transcription != "hello" {
		t.Fatalf("unexpected dto: %#v", dto)
	}
	if !dto.HasVideo || !dto.HasCaptions {
		t.Fatalf("expected artifacts flagged, got %#v", dto)
	}
	if dto.CreatedAt != "2024-03-01T11:00:00.000Z" || dto.UpdatedAt != "2024-03-01T11:01:00.000Z" {
		t.Fatalf("expected UTC timestamps, got %q / %q", dto.CreatedAt, dto.UpdatedAt)
	}
}

func TestFromJobHandlesNilAndEmpty(t *testing.T) {
	if got := FromJob(nil); got.ID != "" {
		t.Fatalf("expected zero value for nil job, got %#v", got)
	}
	dto := FromJob(&jobs.Job{ID: "x", Status: jobs.StatusUploaded})
	if dto.HasVideo || dto.HasCaptions || dto.CreatedAt != "" {
		t.Fatalf("expected empty artifacts and timestamps, got %#v", dto)
	}
	if list := FromJobs([]*jobs.Job{{ID: "a"}, {ID: "b"}}); len(list) != 2 || list[1].ID != "b" {
		t.Fatalf("unexpected list conversion: %#v", list)
	}
}
