// Package preflight provides readiness checks for the external services and
// filesystem paths subburn depends on.
//
// These checks run in two contexts:
//   - "subburn serve" logs RunAll results before starting the daemon so
//     misconfiguration shows up before the first upload instead of as a
//     failed job.
//   - The CLI "subburn check" command renders every result as a table.
//
// Each optional integration is gated by its config toggle; disabled features
// are skipped.
package preflight
