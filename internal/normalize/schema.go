// Package normalize turns heterogeneous raw spreadsheet rows into a
// normalized transaction table with a fixed, fully populated schema.
package normalize

import (
	"strings"

	"salesledger/internal/core"

	"github.com/shopspring/decimal"
)

// Kind classifies a schema column for default-fill and coercion.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindDate
)

// Column declares one required column and the value used when it is absent.
// Date columns default to the processing date and ignore the Default field.
type Column struct {
	Name    string
	Kind    Kind
	Default any
}

// Schema is the ordered set of required columns. It is the only
// configuration the normalizer accepts.
type Schema []Column

// Has reports whether the schema declares the named column.
func (s Schema) Has(name string) bool {
	for _, c := range s {
		if c.Name == name {
			return true
		}
	}
	return false
}

// DefaultSchema declares the full transaction table: every column the
// dashboard reads, string columns defaulting to "", numeric columns to 0
// and the date column to the processing date.
func DefaultSchema() Schema {
	str := func(name string) Column {
		return Column{Name: name, Kind: KindString, Default: ""}
	}
	num := func(name string) Column {
		return Column{Name: name, Kind: KindNumber, Default: decimal.Zero}
	}
	return Schema{
		{Name: core.ColDate, Kind: KindDate},
		str(core.ColOrderNo),
		str(core.ColCustomerName),
		str(core.ColCustomerType),
		str(core.ColSalesExecutive),
		str(core.ColAreaZone),
		num(core.ColSalesAmount),
		num(core.ColSalesReturn),
		num(core.ColPaidAmount),
		num(core.ColOpenValue),
		num(core.ColCashback),
		num(core.ColExecCommission),
		num(core.ColZonalOfficer),
		num(core.ColGMCommission),
		num(core.ColCompanyProfit),
	}
}

// headerAliases maps legacy spreadsheet headers to canonical column names.
// The June workbooks used "Order No" and a handful of renamed commission
// columns over time.
var headerAliases = map[string]string{
	"order no":            core.ColOrderNo,
	"order_no":            core.ColOrderNo,
	"sales_by":            core.ColSalesExecutive,
	"sales_ex_commission": core.ColExecCommission,
}

// CanonicalColumn maps a raw header cell to its canonical column name.
func CanonicalColumn(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if canon, ok := headerAliases[h]; ok {
		return canon
	}
	return strings.ReplaceAll(h, " ", "_")
}
