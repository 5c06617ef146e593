package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"salesledger/internal/core"

	"github.com/shopspring/decimal"
)

// RawTable is the loader-facing shape of a spreadsheet: a header and cell
// rows of arbitrary width. Cells may be strings, numbers or time values
// depending on the adapter that produced them.
type RawTable struct {
	Columns []string
	Rows    [][]any
}

// Report collects the non-fatal data-quality defects absorbed during a
// normalization pass. Callers log it; it never fails a batch.
type Report struct {
	Rows             int
	DefaultedColumns map[string]int
	UnparsableDates  int
	CoercedNumerics  int
	Samples          []string
}

const maxReportSamples = 5

// Clean reports whether the pass absorbed no defects.
func (r *Report) Clean() bool {
	return len(r.DefaultedColumns) == 0 && r.UnparsableDates == 0 && r.CoercedNumerics == 0
}

func (r *Report) sample(format string, args ...any) {
	if len(r.Samples) < maxReportSamples {
		r.Samples = append(r.Samples, fmt.Sprintf(format, args...))
	}
}

// Normalize fills every schema column of every row, parses dates, derives
// calendar attributes and sorts the result date-descending (unknown dates
// last, input order preserved among ties). Rows with defects are repaired
// and kept; only input that is not table-shaped at all fails.
func Normalize(raw RawTable, schema Schema, now time.Time) (*core.Table, *Report, error) {
	if len(schema) == 0 {
		return nil, nil, &core.MalformedInputError{Reason: "empty schema"}
	}
	if len(raw.Columns) == 0 && len(raw.Rows) > 0 {
		return nil, nil, &core.MalformedInputError{Reason: "rows present but no column header"}
	}

	report := &Report{DefaultedColumns: make(map[string]int)}

	index := make(map[string]int, len(raw.Columns))
	source := make(core.ColumnSet, len(raw.Columns))
	for i, name := range raw.Columns {
		canon := CanonicalColumn(name)
		if canon == "" {
			continue
		}
		if _, dup := index[canon]; !dup {
			index[canon] = i
		}
		source.Add(canon)
	}

	records := make([]core.Record, 0, len(raw.Rows))
	for rowNo, row := range raw.Rows {
		var rec core.Record
		for _, col := range schema {
			cell, present := cellAt(row, index, col.Name)
			switch col.Kind {
			case KindDate:
				if !present {
					report.DefaultedColumns[col.Name]++
					rec.Date = core.Date{Time: truncateDay(now)}
					break
				}
				d, ok := parseDate(cell)
				if !ok {
					report.UnparsableDates++
					report.sample("row %d: unparsable date %q", rowNo+1, fmt.Sprint(cell))
				}
				rec.Date = d
			case KindNumber:
				if !present {
					report.DefaultedColumns[col.Name]++
					setNumber(&rec, col.Name, defaultNumber(col))
					break
				}
				n, ok := parseNumber(cell)
				if !ok {
					report.CoercedNumerics++
					report.sample("row %d: non-numeric %s %q coerced to 0", rowNo+1, col.Name, fmt.Sprint(cell))
					n = decimal.Zero
				}
				setNumber(&rec, col.Name, n)
			default:
				if !present {
					report.DefaultedColumns[col.Name]++
					setString(&rec, col.Name, defaultString(col))
					break
				}
				setString(&rec, col.Name, strings.TrimSpace(fmt.Sprint(cell)))
			}
		}

		if rec.Date.Valid() {
			rec.Month = rec.Date.MonthName()
			rec.Quarter = rec.Date.Quarter()
			rec.Year = rec.Date.Year()
			rec.DayOfWeek = rec.Date.DayOfWeek()
		}
		records = append(records, rec)
	}
	report.Rows = len(records)

	// Date descending, unknown dates last, stable for ties.
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Date, records[j].Date
		switch {
		case a.Valid() && !b.Valid():
			return true
		case !a.Valid():
			return false
		default:
			return a.After(b.Time)
		}
	})

	return &core.Table{Records: records, Source: source}, report, nil
}

// cellAt returns the cell for a canonical column name. A column missing
// from the header, a short row, and an empty cell all count as absent.
func cellAt(row []any, index map[string]int, name string) (any, bool) {
	pos, ok := index[name]
	if !ok || pos >= len(row) {
		return nil, false
	}
	cell := row[pos]
	if cell == nil {
		return nil, false
	}
	if s, isStr := cell.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return cell, true
}

func defaultString(col Column) string {
	if s, ok := col.Default.(string); ok {
		return s
	}
	return ""
}

func defaultNumber(col Column) decimal.Decimal {
	if d, ok := col.Default.(decimal.Decimal); ok {
		return d
	}
	return decimal.Zero
}

// excelEpoch is day zero of Excel's 1900 date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006", // the workbooks write day-first
	"02-01-2006",
	"2006/01/02",
}

// parseDate accepts time values, the string formats the workbooks contain
// and Excel serial day numbers. A zero Date with ok=false means the row
// must be treated as undated.
func parseDate(cell any) (core.Date, bool) {
	switch v := cell.(type) {
	case time.Time:
		if v.IsZero() {
			return core.Date{}, false
		}
		return core.Date{Time: truncateDay(v)}, true
	case core.Date:
		return v, v.Valid()
	case float64:
		return serialDate(v)
	case int:
		return serialDate(float64(v))
	case int64:
		return serialDate(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return core.Date{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return core.Date{Time: truncateDay(t)}, true
			}
		}
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			return serialDate(serial)
		}
		return core.Date{}, false
	default:
		return core.Date{}, false
	}
}

func serialDate(serial float64) (core.Date, bool) {
	// Serial 61 is 1900-03-01; anything below that is either the Lotus leap
	// year bug zone or not a plausible transaction date.
	if serial < 61 || serial > 200000 {
		return core.Date{}, false
	}
	t := excelEpoch.AddDate(0, 0, int(serial))
	return core.Date{Time: t}, true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseNumber coerces a cell to a decimal. Strings may carry thousands
// separators or a decimal comma.
func parseNumber(cell any) (decimal.Decimal, bool) {
	switch v := cell.(type) {
	case decimal.Decimal:
		return v, true
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, false
		}
		if strings.Contains(s, ",") {
			if strings.Contains(s, ".") {
				s = strings.ReplaceAll(s, ",", "") // 1,234.50
			} else {
				s = strings.ReplaceAll(s, ",", ".") // decimal comma
			}
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

func setString(rec *core.Record, name, value string) {
	switch name {
	case core.ColOrderNo:
		rec.OrderNo = value
	case core.ColCustomerName:
		rec.CustomerName = value
	case core.ColCustomerType:
		rec.CustomerType = value
	case core.ColSalesExecutive:
		rec.SalesExecutive = value
	case core.ColAreaZone:
		rec.AreaZone = value
	}
}

func setNumber(rec *core.Record, name string, value decimal.Decimal) {
	switch name {
	case core.ColSalesAmount:
		rec.SalesAmount = value
	case core.ColSalesReturn:
		rec.SalesReturn = value
	case core.ColPaidAmount:
		rec.PaidAmount = value
	case core.ColOpenValue:
		rec.OpenValue = value
	case core.ColCashback:
		rec.Cashback = value
	case core.ColExecCommission:
		rec.ExecutiveCommission = value
	case core.ColZonalOfficer:
		rec.ZonalOfficerCommission = value
	case core.ColGMCommission:
		rec.GMCommission = value
	case core.ColCompanyProfit:
		rec.CompanyProfit = value
	}
}
