package api

import "subburn/internal/jobs"

// FromJob converts a job record to its API representation.
func FromJob(job *jobs.Job) Video {
	if job == nil {
		return Video{}
	}
	dto := Video{
		ID:            job.ID,
		OriginalName:  job.OriginalName,
		Status:        string(job.Status),
		Transcription: job.Transcript,
		Settings:      job.Settings,
		HasVideo:      job.ProcessedPath != "",
		HasCaptions:   job.CaptionPath != "",
	}
	if !job.CreatedAt.IsZero() {
		dto.CreatedAt = job.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		dto.UpdatedAt = job.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromJobs converts a slice of job records, preserving order.
func FromJobs(list []*jobs.Job) []Video {
	out := make([]Video, 0, len(list))
	for _, job := range list {
		out = append(out, FromJob(job))
	}
	return out
}
