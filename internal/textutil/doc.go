// Package textutil provides filename and label helpers for user-facing text.
//
// Uploaded videos keep their original display names, which may contain any
// Unicode. Download responses need ASCII-safe filenames, and CLI tables show
// style preset names in title case.
package textutil
