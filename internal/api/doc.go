// Package api defines wire-format types and the job service shared by the
// HTTP server and the CLI. It translates jobs.Job records into
// transport-friendly DTOs and implements the synchronous request surface:
// upload, process, status, artifact lookup, listing, deletion and style
// presets.
//
// # Key Types
//
// Video: transport representation of a job with settings and transcript.
//
// UploadResult: the reply to a stored upload.
//
// StylePreset: a named caption look that seeds colors for process requests.
//
// JobService: the operations behind every /api/videos route.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for browser consumers, and settings keep the
// bgColor key existing clients send. Timestamps use RFC3339 with
// milliseconds. Errors carry services sentinels so the transport layer can
// map them onto 400/404/500 without inspecting messages.
package api
