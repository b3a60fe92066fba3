// Package jobs persists caption jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// A job moves uploaded -> processing -> completed, or to failed from any
// point while processing. The Store refuses writes that would leave artifact
// paths on a job that is not completed (or a completed job without them), so
// readers can rely on CaptionPath and ProcessedPath being present exactly
// when Status is completed.
//
// Schema changes bump the version in schema.go; users clear the database to
// adopt the new schema.
package jobs
