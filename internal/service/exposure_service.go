package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
	"github.com/shaikhsameershabbir/matka-core/internal/engine"
)

// ExposureService builds per-number liability reports for the manual
// result-picking workflow and snapshots them to cold storage.
type ExposureService struct {
	bets     domain.BetStore
	archiver domain.Archiver
	logger   *slog.Logger
}

// NewExposureService creates an ExposureService. The archiver may be nil
// when snapshotting is disabled.
func NewExposureService(bets domain.BetStore, archiver domain.Archiver, logger *slog.Logger) *ExposureService {
	return &ExposureService{
		bets:     bets,
		archiver: archiver,
		logger:   logger,
	}
}

// Report aggregates every bet on the market day into exposure buckets under
// the given filter. Malformed bets are tolerated and surfaced as warnings on
// the report, never as an error.
func (s *ExposureService) Report(ctx context.Context, marketID, date string, filter engine.Filter) (domain.ExposureReport, error) {
	bets, err := s.bets.ListByMarketDay(ctx, marketID, date)
	if err != nil {
		return domain.ExposureReport{}, fmt.Errorf("exposure: list bets %s/%s: %w", marketID, date, err)
	}

	report := engine.Aggregate(bets, filter)
	for _, w := range report.Warnings {
		s.logger.WarnContext(ctx, "exposure: skipped malformed bet data",
			slog.String("market_id", marketID),
			slog.String("date", date),
			slog.String("reason", w),
		)
	}
	return report, nil
}

// Snapshot builds a report and archives it to cold storage so historical
// liability survives bet archival.
func (s *ExposureService) Snapshot(ctx context.Context, marketID, date string, filter engine.Filter) (domain.ExposureReport, error) {
	report, err := s.Report(ctx, marketID, date, filter)
	if err != nil {
		return domain.ExposureReport{}, err
	}
	if s.archiver == nil {
		return report, nil
	}
	if err := s.archiver.ArchiveExposure(ctx, marketID, date, report); err != nil {
		return report, fmt.Errorf("exposure: snapshot %s/%s: %w", marketID, date, err)
	}
	return report, nil
}
