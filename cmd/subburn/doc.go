// Package main hosts the subburn CLI entrypoint and command graph.
//
// The Cobra command tree starts the HTTP daemon, captions a local video in the
// foreground, inspects and deletes stored jobs, lists style presets, tails the
// daemon log, runs preflight checks and scaffolds configuration. Config
// resolution, logger setup and pipeline wiring live here so subcommands stay
// thin.
//
// Add new behaviour in the internal packages first, then surface it through a
// command or flag here.
package main
