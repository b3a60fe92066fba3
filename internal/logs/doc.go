// Package logs reads the daemon's rotating log file for `subburn logs`.
//
// Last returns the trailing lines with bounded memory, optionally filtered to
// one job. Follow polls from an offset and restarts from the top when the file
// shrinks, which is what a rotation looks like from the reader's side.
package logs
