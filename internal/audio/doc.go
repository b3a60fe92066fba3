// Package audio extracts a speech-ready waveform from a source video.
package audio
