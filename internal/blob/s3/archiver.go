package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// SettledBetStore provides the read access the archiver needs. The Postgres
// BetStore satisfies it implicitly; the archiver does not need the write
// half of the bet store.
type SettledBetStore interface {
	ListSettledBefore(ctx context.Context, before time.Time) ([]domain.Bet, error)
}

// ArchiveImpl implements domain.Archiver by querying the primary store for
// settled bets, serializing them to JSONL, and uploading the result to S3.
//
// Deletion of the archived records from the primary store is intentionally
// NOT performed here -- that is a separate, explicit step to be executed
// after the archive has been verified.
type ArchiveImpl struct {
	writer domain.BlobWriter
	bets   SettledBetStore
	audit  domain.AuditStore
}

// NewArchiver creates a new ArchiveImpl.
func NewArchiver(writer domain.BlobWriter, bets SettledBetStore, audit domain.AuditStore) *ArchiveImpl {
	return &ArchiveImpl{
		writer: writer,
		bets:   bets,
		audit:  audit,
	}
}

// ArchiveSettledBets queries all bets settled strictly before the cutoff,
// serializes them to JSONL, and uploads the file to S3 at
// archive/bets/YYYY-MM.jsonl. The archival event is recorded in the audit
// log and the count of archived records is returned.
func (a *ArchiveImpl) ArchiveSettledBets(ctx context.Context, before time.Time) (int64, error) {
	bets, err := a.bets.ListSettledBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive bets query: %w", err)
	}
	if len(bets) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(bets)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive bets marshal: %w", err)
	}

	path := fmt.Sprintf("archive/bets/%s.jsonl", before.Format("2006-01"))
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive bets upload: %w", err)
	}

	count := int64(len(bets))

	if err := a.audit.Log(ctx, "archive.bets", map[string]any{
		"path":   path,
		"count":  count,
		"before": before.Format(time.RFC3339),
	}); err != nil {
		return count, fmt.Errorf("s3blob: archive bets audit log: %w", err)
	}

	return count, nil
}

// ArchiveExposure snapshots an exposure report for a market day to S3 at
// exposure/{marketID}/{date}.json so the reporting tier can read historical
// liability without touching the primary store.
func (a *ArchiveImpl) ArchiveExposure(ctx context.Context, marketID, date string, report domain.ExposureReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("s3blob: marshal exposure %s/%s: %w", marketID, date, err)
	}

	path := fmt.Sprintf("exposure/%s/%s.json", marketID, date)
	if err := a.writer.Put(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive exposure upload %s: %w", path, err)
	}

	if err := a.audit.Log(ctx, "archive.exposure", map[string]any{
		"path":   path,
		"market": marketID,
		"date":   date,
		"total":  report.GrandTotal,
	}); err != nil {
		return fmt.Errorf("s3blob: archive exposure audit log: %w", err)
	}

	return nil
}

// marshalJSONL serialises a slice of values as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.Archiver = (*ArchiveImpl)(nil)
