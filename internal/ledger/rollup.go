package ledger

import (
	"fmt"
	"sort"
	"strings"

	"salesledger/internal/core"

	"github.com/shopspring/decimal"
)

// Dimension is a grouping key of the transaction table. Grouping compares
// values with exact string equality; no case or whitespace normalization
// is applied.
type Dimension string

const (
	DimCustomer     Dimension = core.ColCustomerName
	DimExecutive    Dimension = core.ColSalesExecutive
	DimCustomerType Dimension = core.ColCustomerType
	DimZone         Dimension = core.ColAreaZone
	DimDate         Dimension = "date"
	DimMonth        Dimension = "month" // "2025-06" buckets
	DimQuarter      Dimension = "quarter"
	DimYear         Dimension = "year"
)

// Field is a summable numeric column.
type Field string

const (
	FieldSalesAmount    Field = core.ColSalesAmount
	FieldSalesReturn    Field = core.ColSalesReturn
	FieldPaidAmount     Field = core.ColPaidAmount
	FieldOpenValue      Field = core.ColOpenValue
	FieldCashback       Field = core.ColCashback
	FieldExecCommission Field = core.ColExecCommission
	FieldZonalOfficer   Field = core.ColZonalOfficer
	FieldGMCommission   Field = core.ColGMCommission
	FieldCompanyProfit  Field = core.ColCompanyProfit
	FieldNetSales       Field = "net_sales"
	FieldOutstanding    Field = "outstanding"
)

// Rollup is one group of a grouped-and-summed view: the group key parts in
// dimension order, the summed fields and the contributing row count.
type Rollup struct {
	Key   []string                  `json:"key"`
	Sums  map[Field]decimal.Decimal `json:"sums"`
	Count int                       `json:"count"`
}

// Sum returns the summed value for a field (zero when the field was not
// requested).
func (r Rollup) Sum(f Field) decimal.Decimal {
	return r.Sums[f]
}

// keySep joins key parts for map lookup; it cannot occur in cell data.
const keySep = "\x1f"

// GroupAndSum groups the table by the dimension tuple and sums the given
// fields per group. Rows with an unknown date are excluded when any
// dimension is date-based. Result order is first-seen group order; callers
// wanting a ranking must apply TopN explicitly.
func GroupAndSum(t *core.Table, dims []Dimension, fields []Field) []Rollup {
	dated := false
	for _, d := range dims {
		if d == DimDate || d == DimMonth || d == DimQuarter || d == DimYear {
			dated = true
		}
	}

	index := make(map[string]int)
	var out []Rollup
	for _, rec := range t.Records {
		if dated && !rec.Date.Valid() {
			continue
		}
		parts := make([]string, len(dims))
		for i, d := range dims {
			parts[i] = dimValue(rec, d)
		}
		key := strings.Join(parts, keySep)

		pos, ok := index[key]
		if !ok {
			pos = len(out)
			index[key] = pos
			out = append(out, Rollup{
				Key:  parts,
				Sums: make(map[Field]decimal.Decimal, len(fields)),
			})
		}
		group := &out[pos]
		group.Count++
		for _, f := range fields {
			group.Sums[f] = group.Sums[f].Add(fieldValue(rec, f))
		}
	}
	return out
}

// TopN returns the n largest rollups by the summed field, descending. Equal
// sums fall back to ascending lexical key order so rankings are
// deterministic. The input slice is not modified.
func TopN(rollups []Rollup, field Field, n int) []Rollup {
	sorted := make([]Rollup, len(rollups))
	copy(sorted, rollups)

	sort.SliceStable(sorted, func(i, j int) bool {
		cmp := sorted[i].Sum(field).Cmp(sorted[j].Sum(field))
		if cmp != 0 {
			return cmp > 0
		}
		return lessKey(sorted[i].Key, sorted[j].Key)
	})

	if n < 0 {
		n = 0
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

func lessKey(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func dimValue(rec core.Record, d Dimension) string {
	switch d {
	case DimCustomer:
		return rec.CustomerName
	case DimExecutive:
		return rec.SalesExecutive
	case DimCustomerType:
		return rec.CustomerType
	case DimZone:
		return rec.AreaZone
	case DimDate:
		return rec.Date.String()
	case DimMonth:
		return rec.Date.Format("2006-01")
	case DimQuarter:
		return fmt.Sprintf("%d-Q%d", rec.Year, rec.Quarter)
	case DimYear:
		return fmt.Sprintf("%d", rec.Year)
	default:
		return ""
	}
}

func fieldValue(rec core.Record, f Field) decimal.Decimal {
	switch f {
	case FieldSalesAmount:
		return rec.SalesAmount
	case FieldSalesReturn:
		return rec.SalesReturn
	case FieldPaidAmount:
		return rec.PaidAmount
	case FieldOpenValue:
		return rec.OpenValue
	case FieldCashback:
		return rec.Cashback
	case FieldExecCommission:
		return rec.ExecutiveCommission
	case FieldZonalOfficer:
		return rec.ZonalOfficerCommission
	case FieldGMCommission:
		return rec.GMCommission
	case FieldCompanyProfit:
		return rec.CompanyProfit
	case FieldNetSales:
		return rec.NetSales
	case FieldOutstanding:
		return rec.Outstanding
	default:
		return decimal.Zero
	}
}

// ParseDimension validates a caller-supplied dimension name.
func ParseDimension(name string) (Dimension, bool) {
	switch Dimension(name) {
	case DimCustomer, DimExecutive, DimCustomerType, DimZone,
		DimDate, DimMonth, DimQuarter, DimYear:
		return Dimension(name), true
	default:
		return "", false
	}
}

// ParseField validates a caller-supplied field name.
func ParseField(name string) (Field, bool) {
	switch Field(name) {
	case FieldSalesAmount, FieldSalesReturn, FieldPaidAmount, FieldOpenValue,
		FieldCashback, FieldExecCommission, FieldZonalOfficer, FieldGMCommission,
		FieldCompanyProfit, FieldNetSales, FieldOutstanding:
		return Field(name), true
	default:
		return "", false
	}
}
