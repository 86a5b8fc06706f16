// Package archive offers captured window images to a secondary store once
// they're durably written to disk. Archival is always best-effort: a
// backend failure or slowness never holds up the capture loop.
package archive

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Backend uploads one object and reports the URL it's reachable at.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader) (url string, err error)
}

// Open selects a Backend by the scheme of archiveDir: "file://" (or a bare
// path) for Local, "s3://bucket/prefix" for S3.
func Open(archiveDir string, s3cfg S3Config) (Backend, error) {
	switch {
	case strings.HasPrefix(archiveDir, "s3://"):
		rest := strings.TrimPrefix(archiveDir, "s3://")
		parts := strings.SplitN(rest, "/", 2)
		bucket := parts[0]
		prefix := ""
		if len(parts) == 2 {
			prefix = parts[1]
		}
		return NewS3(bucket, prefix, s3cfg)
	case strings.HasPrefix(archiveDir, "file://"):
		return NewLocal(strings.TrimPrefix(archiveDir, "file://")), nil
	case archiveDir == "":
		return nil, fmt.Errorf("archive: no archive_dir configured")
	default:
		return NewLocal(archiveDir), nil
	}
}
