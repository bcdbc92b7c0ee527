package domain

import (
	"context"
	"io"
	"time"
)

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// Archiver moves settled data out of the primary store into cold storage and
// snapshots exposure reports for the reporting tier.
type Archiver interface {
	ArchiveSettledBets(ctx context.Context, before time.Time) (int64, error)
	ArchiveExposure(ctx context.Context, marketID, date string, report ExposureReport) error
}
