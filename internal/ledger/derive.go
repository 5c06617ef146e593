// Package ledger computes derived financial fields and rollups over a
// normalized transaction table. Every operation is a pure function of its
// input snapshot; nothing here holds state between calls.
package ledger

import (
	"salesledger/internal/core"
)

// DeriveRecord recomputes the derived fields of a single record from its
// authoritative inputs:
//
//	net_sales   = sales_amount - sales_return
//	outstanding = open_value + sales_amount - paid_amount - sales_return - cashback
//
// and, when recomputeCommissions is set, the four commission/profit shares
// of paid_amount rounded to 2 decimal places.
func DeriveRecord(rec core.Record, recomputeCommissions bool) core.Record {
	rec.NetSales = rec.SalesAmount.Sub(rec.SalesReturn)
	rec.Outstanding = rec.OpenValue.
		Add(rec.SalesAmount).
		Sub(rec.PaidAmount).
		Sub(rec.SalesReturn).
		Sub(rec.Cashback)

	if recomputeCommissions {
		rec.ExecutiveCommission = rec.PaidAmount.Mul(core.RateExecutiveCommission).Round(2)
		rec.ZonalOfficerCommission = rec.PaidAmount.Mul(core.RateZonalOfficerCommission).Round(2)
		rec.GMCommission = rec.PaidAmount.Mul(core.RateGMCommission).Round(2)
		rec.CompanyProfit = rec.PaidAmount.Mul(core.RateCompanyProfit).Round(2)
	}
	return rec
}

// DeriveFields returns a new table with every record's derived fields
// recomputed. The input table is left untouched.
//
// Commissions are always recomputed from paid_amount; the stored
// spreadsheet values are trusted only when the source had no paid_amount
// column at all, in which case recomputing would zero historically correct
// data.
func DeriveFields(t *core.Table) *core.Table {
	out := t.Clone()
	recompute := shouldRecomputeCommissions(t.Source)
	for i := range out.Records {
		out.Records[i] = DeriveRecord(out.Records[i], recompute)
	}
	return out
}

func shouldRecomputeCommissions(source core.ColumnSet) bool {
	if source == nil || source.Has(core.ColPaidAmount) {
		return true
	}
	// paid_amount absent: fall back to stored values if the source carried
	// any, otherwise recomputing is harmless (everything is zero).
	stored := source.Has(core.ColExecCommission) ||
		source.Has(core.ColZonalOfficer) ||
		source.Has(core.ColGMCommission) ||
		source.Has(core.ColCompanyProfit)
	return !stored
}
