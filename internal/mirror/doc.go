// Package mirror copies finished caption artifacts to an S3-compatible bucket
// through minio-go. Mirroring is best effort; the pipeline logs and ignores
// failures.
package mirror
