package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// InterruptedReason is logged when jobs left in processing are failed on startup.
const InterruptedReason = "Daemon restarted while processing"

var allStatuses = []Status{
	StatusUploaded,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

// ParseStatus converts user input into a Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// IsTerminal reports whether no run is expected to change the job further.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanStartProcessing reports whether a process request may move a job in
// status s to processing. Failed and completed jobs may be processed again;
// a job already processing is accepted as well and races the earlier run.
func (s Status) CanStartProcessing() bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusFailed, StatusCompleted:
		return true
	default:
		return false
	}
}

// Caption positions understood by the renderer.
const (
	PositionTop    = "top"
	PositionCenter = "center"
	PositionBottom = "bottom"
)

// Setting defaults applied when a process request omits a field.
const (
	DefaultStyle           = "classic"
	DefaultFontSize        = 24
	DefaultFontColor       = "#FFFFFF"
	DefaultBackgroundColor = "none"
	DefaultPosition        = PositionBottom
	DefaultFontFamily      = "Arial"
)

// Settings captures the user's styling choices for burned-in captions.
type Settings struct {
	Style           string `json:"style"`
	FontSize        int    `json:"fontSize"`
	FontColor       string `json:"fontColor"`
	BackgroundColor string `json:"bgColor"`
	Position        string `json:"position"`
	FontFamily      string `json:"fontFamily"`
}

// DefaultSettings returns the settings used when none are supplied.
func DefaultSettings() Settings {
	return Settings{
		Style:           DefaultStyle,
		FontSize:        DefaultFontSize,
		FontColor:       DefaultFontColor,
		BackgroundColor: DefaultBackgroundColor,
		Position:        DefaultPosition,
		FontFamily:      DefaultFontFamily,
	}
}

// WithDefaults fills empty or non-positive fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	defaults := DefaultSettings()
	s.Style = strings.TrimSpace(s.Style)
	if s.Style == "" {
		s.Style = defaults.Style
	}
	if s.FontSize <= 0 {
		s.FontSize = defaults.FontSize
	}
	s.FontColor = strings.TrimSpace(s.FontColor)
	if s.FontColor == "" {
		s.FontColor = defaults.FontColor
	}
	s.BackgroundColor = strings.TrimSpace(s.BackgroundColor)
	if s.BackgroundColor == "" {
		s.BackgroundColor = defaults.BackgroundColor
	}
	s.Position = strings.ToLower(strings.TrimSpace(s.Position))
	if s.Position == "" {
		s.Position = defaults.Position
	}
	s.FontFamily = strings.TrimSpace(s.FontFamily)
	if s.FontFamily == "" {
		s.FontFamily = defaults.FontFamily
	}
	return s
}

// Job is one conversion request and its lifecycle.
type Job struct {
	ID            string
	OriginalName  string
	SourcePath    string
	Status        Status
	Settings      Settings
	Transcript    string
	CaptionPath   string
	ProcessedPath string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ClearResults drops artifacts and transcript from a previous run.
func (j *Job) ClearResults() {
	j.Transcript = ""
	j.CaptionPath = ""
	j.ProcessedPath = ""
}

// HasArtifacts reports whether both output paths are recorded.
func (j *Job) HasArtifacts() bool {
	return strings.TrimSpace(j.CaptionPath) != "" && strings.TrimSpace(j.ProcessedPath) != ""
}

// HealthSummary aggregates job counts by lifecycle bucket.
type HealthSummary struct {
	Total      int
	Uploaded   int
	Processing int
	Completed  int
	Failed     int
}
