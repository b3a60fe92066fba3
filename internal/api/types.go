package api

import "subburn/internal/jobs"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Video describes a job in a transport-friendly format.
type Video struct {
	ID            string        `json:"id"`
	OriginalName  string        `json:"originalName"`
	Status        string        `json:"status"`
	Transcription string        `json:"transcription"`
	Settings      jobs.Settings `json:"subtitleSettings"`
	HasVideo      bool          `json:"hasVideo"`
	HasCaptions   bool          `json:"hasCaptions"`
	CreatedAt     string        `json:"createdAt,omitempty"`
	UpdatedAt     string        `json:"updatedAt,omitempty"`
}

// UploadResult is returned once an upload is stored and registered.
type UploadResult struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	Status   string `json:"status"`
}

// StylePreset is a named caption look.
type StylePreset struct {
	Name            string `json:"name"`
	Label           string `json:"label"`
	FontColor       string `json:"fontColor"`
	BackgroundColor string `json:"bgColor"`
}

// ArtifactKind selects which finished file a download returns.
type ArtifactKind string

const (
	ArtifactVideo    ArtifactKind = "video"
	ArtifactCaptions ArtifactKind = "captions"
)

// Artifact locates a finished file and the name it is served under.
type Artifact struct {
	Path     string
	FileName string
}
