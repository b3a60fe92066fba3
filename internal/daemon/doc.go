// Package daemon coordinates the long-running subburn process.
//
// It wires configuration, job storage, the pipeline executor, the retention
// scheduler and the HTTP API into a single lifecycle with flock-based locking
// to prevent multiple instances. On start it fails jobs a previous process
// left in processing and sends one notification about them. On stop it
// cancels in-flight runs and waits for them to record their outcome.
//
// Keep orchestration logic here: pipeline stages live in their own packages
// while the daemon focuses on startup, shutdown and request routing.
package daemon
