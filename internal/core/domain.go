package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission and profit rates, all applied to the paid amount. These are the
// canonical business rates; stored spreadsheet values are recomputed from
// them unless the paid_amount column is missing from the source entirely.
var (
	RateExecutiveCommission    = decimal.NewFromFloat(0.01)
	RateZonalOfficerCommission = decimal.NewFromFloat(0.003)
	RateGMCommission           = decimal.NewFromFloat(0.002)
	RateCompanyProfit          = decimal.NewFromFloat(0.05)

	// Default cashback granted to eligible customers on the append path.
	RateCustomerCashback = decimal.NewFromFloat(0.02)
)

// Canonical column names of the transaction table. The workbook adapters
// translate legacy spreadsheet headers ("Order No") to these.
const (
	ColDate           = "date"
	ColOrderNo        = "order_no"
	ColCustomerName   = "customer_name"
	ColCustomerType   = "customer_type"
	ColSalesExecutive = "sales_executive"
	ColAreaZone       = "area_zone"
	ColSalesAmount    = "sales_amount"
	ColSalesReturn    = "sales_return"
	ColPaidAmount     = "paid_amount"
	ColOpenValue      = "open_value"
	ColCashback       = "customer_cashback_on_paid_amount"
	ColExecCommission = "executive_commission"
	ColZonalOfficer   = "zonal_officer_commission"
	ColGMCommission   = "gm_commission"
	ColCompanyProfit  = "company_profit"
)

// Date is a calendar date. The zero value means "unknown": the row is kept
// but excluded from date-range filters and calendar derivations.
type Date struct {
	time.Time
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Valid reports whether the date is known.
func (d Date) Valid() bool {
	return !d.IsZero()
}

// Quarter returns the calendar quarter (1-4), or 0 for an unknown date.
func (d Date) Quarter() int {
	if !d.Valid() {
		return 0
	}
	return (int(d.Month())-1)/3 + 1
}

// MonthName returns the English month name, or "" for an unknown date.
func (d Date) MonthName() string {
	if !d.Valid() {
		return ""
	}
	return d.Month().String()
}

// DayOfWeek returns the English weekday name, or "" for an unknown date.
func (d Date) DayOfWeek() string {
	if !d.Valid() {
		return ""
	}
	return d.Weekday().String()
}

func (d Date) String() string {
	if !d.Valid() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as "YYYY-MM-DD", or null when unknown.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD", "" or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(`"2006-01-02"`, s)
	if err != nil {
		return err
	}
	*d = Date{Time: t}
	return nil
}

// Record is one sales event: the authoritative spreadsheet columns plus the
// calendar and financial fields derived from them.
type Record struct {
	Date           Date   `json:"date"`
	OrderNo        string `json:"order_no"`
	CustomerName   string `json:"customer_name"`
	CustomerType   string `json:"customer_type"`
	SalesExecutive string `json:"sales_executive"`
	AreaZone       string `json:"area_zone"`

	SalesAmount decimal.Decimal `json:"sales_amount"`
	SalesReturn decimal.Decimal `json:"sales_return"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	OpenValue   decimal.Decimal `json:"open_value"`
	Cashback    decimal.Decimal `json:"customer_cashback_on_paid_amount"`

	ExecutiveCommission    decimal.Decimal `json:"executive_commission"`
	ZonalOfficerCommission decimal.Decimal `json:"zonal_officer_commission"`
	GMCommission           decimal.Decimal `json:"gm_commission"`
	CompanyProfit          decimal.Decimal `json:"company_profit"`

	// Calendar attributes, filled by the normalizer for valid dates.
	Month     string `json:"month,omitempty"`
	Quarter   int    `json:"quarter,omitempty"`
	Year      int    `json:"year,omitempty"`
	DayOfWeek string `json:"day_of_week,omitempty"`

	// Derived financial fields, filled by the aggregator.
	NetSales    decimal.Decimal `json:"net_sales"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
