// Package ffmpeg runs the ffmpeg binary with argument vectors.
//
// Callers inject a Runner so tests can observe the argv without spawning a
// process. Diagnostic output from failed invocations is carried in the
// returned error.
package ffmpeg
