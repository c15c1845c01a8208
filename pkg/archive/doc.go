// Package archive persists the artifacts of a finished interview: the
// rendered transcript, its structured entries and the feedback report.
//
// Artifacts are written through a [FileStore]. [Local] keeps them on disk;
// [S3] puts them in any S3-compatible bucket.
package archive
