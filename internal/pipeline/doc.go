// Package pipeline runs one captioning job end to end.
//
// The Orchestrator executes validate, extract, transcribe, captions, render
// and finalize in order against collaborators supplied through Deps. Any
// stage error marks the job failed; only a full run marks it completed. The
// Executor launches runs in the background keyed by job identifier so HTTP
// handlers can return immediately.
package pipeline
