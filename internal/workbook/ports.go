// Package workbook defines the ports between the computation core and the
// spreadsheet-shaped system of record, plus shared row/header helpers used
// by the adapters.
package workbook

import (
	"context"

	"salesledger/internal/core"
	"salesledger/internal/normalize"
)

// Ports for outbound adapters.
type (
	// TableLoader reads the whole transaction sheet as a raw table. The
	// core never opens files itself; it only sees the in-memory result.
	TableLoader interface {
		Load(ctx context.Context) (normalize.RawTable, error)
	}

	// RecordAppender persists one validated transaction and returns an
	// adapter-specific row reference.
	RecordAppender interface {
		Append(ctx context.Context, rec core.Record) (rowRef string, err error)
	}
)

// Header returns the canonical column order of the transaction sheet.
func Header() []string {
	return []string{
		core.ColDate,
		core.ColOrderNo,
		core.ColCustomerName,
		core.ColCustomerType,
		core.ColSalesExecutive,
		core.ColAreaZone,
		core.ColSalesAmount,
		core.ColSalesReturn,
		core.ColPaidAmount,
		core.ColOpenValue,
		core.ColCashback,
		core.ColExecCommission,
		core.ColZonalOfficer,
		core.ColGMCommission,
		core.ColCompanyProfit,
	}
}

// RecordRow renders a record as a sheet row in Header() order. Amounts are
// written as numbers so spreadsheet formulas keep working.
func RecordRow(rec core.Record) []any {
	return []any{
		rec.Date.String(),
		rec.OrderNo,
		rec.CustomerName,
		rec.CustomerType,
		rec.SalesExecutive,
		rec.AreaZone,
		rec.SalesAmount.InexactFloat64(),
		rec.SalesReturn.InexactFloat64(),
		rec.PaidAmount.InexactFloat64(),
		rec.OpenValue.InexactFloat64(),
		rec.Cashback.InexactFloat64(),
		rec.ExecutiveCommission.InexactFloat64(),
		rec.ZonalOfficerCommission.InexactFloat64(),
		rec.GMCommission.InexactFloat64(),
		rec.CompanyProfit.InexactFloat64(),
	}
}
