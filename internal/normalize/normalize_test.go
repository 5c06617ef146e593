package normalize

import (
	"testing"
	"time"

	"salesledger/internal/core"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 7, 1, 10, 30, 0, 0, time.UTC)

func TestNormalizeDefaultFillTotality(t *testing.T) {
	// One row carrying only date and customer name; every other required
	// column must come out with its configured default.
	raw := RawTable{
		Columns: []string{"date", "customer_name"},
		Rows: [][]any{
			{"2025-06-15", "Acme"},
		},
	}

	table, report, err := Normalize(raw, DefaultSchema(), testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", table.Len())
	}

	rec := table.Records[0]
	if rec.CustomerName != "Acme" {
		t.Errorf("customer_name = %q", rec.CustomerName)
	}
	if rec.CustomerType != "" || rec.AreaZone != "" || rec.OrderNo != "" {
		t.Error("missing string columns must default to empty string")
	}
	for name, v := range map[string]decimal.Decimal{
		"sales_amount": rec.SalesAmount,
		"sales_return": rec.SalesReturn,
		"paid_amount":  rec.PaidAmount,
		"open_value":   rec.OpenValue,
		"cashback":     rec.Cashback,
	} {
		if !v.IsZero() {
			t.Errorf("missing numeric column %s must default to 0, got %s", name, v)
		}
	}
	if report.Clean() {
		t.Error("report should record the defaulted columns")
	}
	if report.DefaultedColumns[core.ColSalesAmount] != 1 {
		t.Errorf("defaulted count for sales_amount = %d, want 1", report.DefaultedColumns[core.ColSalesAmount])
	}
}

func TestNormalizeCalendarDerivation(t *testing.T) {
	raw := RawTable{
		Columns: []string{"date", "sales_amount"},
		Rows:    [][]any{{"2025-06-15", 100.0}},
	}

	table, _, err := Normalize(raw, DefaultSchema(), testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	rec := table.Records[0]
	if rec.Month != "June" || rec.Quarter != 2 || rec.Year != 2025 || rec.DayOfWeek != "Sunday" {
		t.Errorf("calendar fields = %q/%d/%d/%q", rec.Month, rec.Quarter, rec.Year, rec.DayOfWeek)
	}
}

func TestNormalizeUnparsableDateRetained(t *testing.T) {
	raw := RawTable{
		Columns: []string{"date", "customer_name"},
		Rows: [][]any{
			{"2025-06-15", "good"},
			{"not a date", "bad"},
		},
	}

	table, report, err := Normalize(raw, DefaultSchema(), testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("bad-date row must be retained, got %d records", table.Len())
	}
	if report.UnparsableDates != 1 {
		t.Errorf("UnparsableDates = %d, want 1", report.UnparsableDates)
	}

	// Undated rows sort last and carry no calendar attributes.
	last := table.Records[1]
	if last.CustomerName != "bad" {
		t.Fatalf("undated row should sort last, got %q", last.CustomerName)
	}
	if last.Date.Valid() || last.Month != "" || last.Quarter != 0 {
		t.Error("undated row must not carry calendar attributes")
	}
}

func TestNormalizeNumericCoercion(t *testing.T) {
	tests := []struct {
		name string
		cell any
		want string
	}{
		{"plain float", 1250.5, "1250.5"},
		{"int", 300, "300"},
		{"string", "420.75", "420.75"},
		{"thousands separator", "1,234.50", "1234.5"},
		{"decimal comma", "12,5", "12.5"},
		{"garbage coerced to zero", "n/a", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawTable{
				Columns: []string{"date", "sales_amount"},
				Rows:    [][]any{{"2025-06-15", tt.cell}},
			}
			table, _, err := Normalize(raw, DefaultSchema(), testNow)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			got := table.Records[0].SalesAmount
			want, _ := decimal.NewFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("sales_amount = %s, want %s", got, want)
			}
		})
	}
}

func TestNormalizeSortsDateDescendingStable(t *testing.T) {
	raw := RawTable{
		Columns: []string{"date", "order_no"},
		Rows: [][]any{
			{"2025-06-10", "first"},
			{"bad", "undated-a"},
			{"2025-06-20", "second"},
			{"2025-06-10", "third"},
			{"", "undated-b"}, // empty date cell defaults to processing date
		},
	}

	table, _, err := Normalize(raw, DefaultSchema(), testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	var got []string
	for _, rec := range table.Records {
		got = append(got, rec.OrderNo)
	}
	// undated-b defaults to 2025-07-01 and thus sorts newest; the two
	// 06-10 ties keep input order; the unparsable date sorts last.
	want := []string{"undated-b", "second", "first", "third", "undated-a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestNormalizeHeaderAliases(t *testing.T) {
	raw := RawTable{
		Columns: []string{"date", "Order No", "sales_by"},
		Rows:    [][]any{{"2025-06-15", "ORD-9", "Karim"}},
	}

	table, _, err := Normalize(raw, DefaultSchema(), testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	rec := table.Records[0]
	if rec.OrderNo != "ORD-9" || rec.SalesExecutive != "Karim" {
		t.Errorf("alias mapping failed: order_no=%q executive=%q", rec.OrderNo, rec.SalesExecutive)
	}
	if !table.Source.Has(core.ColOrderNo) || !table.Source.Has(core.ColSalesExecutive) {
		t.Error("source column set should hold canonical names")
	}
}

func TestNormalizeExcelSerialDates(t *testing.T) {
	raw := RawTable{
		Columns: []string{"date", "order_no"},
		Rows: [][]any{
			{45823.0, "serial"}, // 2025-06-15
			{"45823", "serial-string"},
		},
	}

	table, _, err := Normalize(raw, DefaultSchema(), testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, rec := range table.Records {
		if rec.Date.String() != "2025-06-15" {
			t.Errorf("%s: date = %s, want 2025-06-15", rec.OrderNo, rec.Date)
		}
	}
}

func TestNormalizeMalformedInput(t *testing.T) {
	t.Run("empty schema", func(t *testing.T) {
		_, _, err := Normalize(RawTable{Columns: []string{"date"}}, nil, testNow)
		if !core.IsMalformedInput(err) {
			t.Fatalf("expected MalformedInputError, got %v", err)
		}
	})

	t.Run("rows without header", func(t *testing.T) {
		raw := RawTable{Rows: [][]any{{"2025-06-15"}}}
		_, _, err := Normalize(raw, DefaultSchema(), testNow)
		if !core.IsMalformedInput(err) {
			t.Fatalf("expected MalformedInputError, got %v", err)
		}
	})

	t.Run("empty table is fine", func(t *testing.T) {
		table, report, err := Normalize(RawTable{}, DefaultSchema(), testNow)
		if err != nil {
			t.Fatalf("empty input must not fail: %v", err)
		}
		if table.Len() != 0 || !report.Clean() {
			t.Error("empty input should produce an empty, clean table")
		}
	})
}
