package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"salesledger/internal/core"
	"salesledger/internal/ledger"
	applog "salesledger/internal/log"
	"salesledger/internal/normalize"
	"salesledger/internal/workbook"
)

// LedgerService turns the workbook of record into a fully derived in-memory
// table. Every call loads a fresh snapshot so dashboards never serve stale
// figures after an append.
type LedgerService struct {
	loader workbook.TableLoader
	schema normalize.Schema
	now    func() time.Time
}

func NewLedgerService(loader workbook.TableLoader) *LedgerService {
	return &LedgerService{
		loader: loader,
		schema: normalize.DefaultSchema(),
		now:    time.Now,
	}
}

// Snapshot loads, normalizes and derives the full transaction table.
// Data-quality defects absorbed during normalization are logged, never fatal.
func (s *LedgerService) Snapshot(ctx context.Context) (*core.Table, error) {
	raw, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load workbook: %w", err)
	}

	table, report, err := normalize.Normalize(raw, s.schema, s.now())
	if err != nil {
		return nil, fmt.Errorf("normalize workbook: %w", err)
	}

	if !report.Clean() {
		slog.WarnContext(ctx, "Workbook normalization absorbed defects",
			applog.FieldOperation, applog.OpSnapshot,
			applog.FieldRowCount, report.Rows,
			"defaulted_columns", report.DefaultedColumns,
			"unparsable_dates", report.UnparsableDates,
			"coerced_numerics", report.CoercedNumerics,
			"samples", report.Samples)
	}

	return ledger.DeriveFields(table), nil
}
