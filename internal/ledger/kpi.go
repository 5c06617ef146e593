package ledger

import (
	"salesledger/internal/core"

	"github.com/shopspring/decimal"
)

// Totals sums each requested field over the whole table.
func Totals(t *core.Table, fields ...Field) map[Field]decimal.Decimal {
	out := make(map[Field]decimal.Decimal, len(fields))
	for _, f := range fields {
		out[f] = decimal.Zero
	}
	for _, rec := range t.Records {
		for _, f := range fields {
			out[f] = out[f].Add(fieldValue(rec, f))
		}
	}
	return out
}

// DistinctCount counts the distinct non-empty values of a dimension.
func DistinctCount(t *core.Table, d Dimension) int {
	seen := make(map[string]struct{})
	for _, rec := range t.Records {
		v := dimValue(rec, d)
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

// HighOutstanding returns the per-customer outstanding rollups exceeding
// the threshold, largest first.
func HighOutstanding(t *core.Table, threshold decimal.Decimal) []Rollup {
	byCustomer := GroupAndSum(t, []Dimension{DimCustomer}, []Field{FieldOutstanding})

	var alerts []Rollup
	for _, r := range byCustomer {
		if r.Sum(FieldOutstanding).GreaterThan(threshold) {
			alerts = append(alerts, r)
		}
	}
	return TopN(alerts, FieldOutstanding, len(alerts))
}
