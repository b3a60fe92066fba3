// Package captions turns transcription results into SRT caption files.
//
// Word-level timing is grouped into fixed-size cues; text without timing
// falls back to one sentence per fixed slot. Output lives under the processed
// directory keyed by job identifier so repeat runs overwrite the same file.
package captions
