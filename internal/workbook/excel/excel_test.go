package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"salesledger/internal/core"
	"salesledger/internal/normalize"
	"salesledger/internal/workbook"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func testRecord() core.Record {
	return core.Record{
		Date:           core.NewDate(2025, 6, 15),
		OrderNo:        "ORD-1",
		CustomerName:   "Acme",
		CustomerType:   "Retail",
		SalesExecutive: "Karim",
		AreaZone:       "North",
		SalesAmount:    decimal.NewFromInt(1000),
		PaidAmount:     decimal.NewFromInt(600),
	}
}

func TestStoreAppendAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "sales.xlsx"), "Sales", dir)

	ref, err := store.Append(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "Sales!A2" {
		t.Errorf("row ref = %q, want Sales!A2", ref)
	}

	raw, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(raw.Columns) != len(workbook.Header()) {
		t.Fatalf("header width = %d, want %d", len(raw.Columns), len(workbook.Header()))
	}
	if len(raw.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(raw.Rows))
	}

	table, _, err := normalize.Normalize(raw, normalize.DefaultSchema(), core.NewDate(2025, 7, 1).Time)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	rec := table.Records[0]
	if rec.OrderNo != "ORD-1" || rec.Date.String() != "2025-06-15" {
		t.Errorf("round trip lost data: %+v", rec)
	}
	if !rec.SalesAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("sales_amount = %s, want 1000", rec.SalesAmount)
	}
}

func TestStoreAppendBacksUpExistingFile(t *testing.T) {
	dir := t.TempDir()
	backups := filepath.Join(dir, "backups")
	store := NewStore(filepath.Join(dir, "sales.xlsx"), "Sales", backups)

	ctx := context.Background()
	if _, err := store.Append(ctx, testRecord()); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if _, err := store.Append(ctx, testRecord()); err != nil {
		t.Fatalf("second append: %v", err)
	}

	entries, err := os.ReadDir(backups)
	if err != nil {
		t.Fatalf("read backup dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one backup after second append, got %d", len(entries))
	}
	if !strings.Contains(entries[0].Name(), "_backup_") {
		t.Errorf("backup name = %q", entries[0].Name())
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.xlsx"), "", "")

	raw, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("missing file must load as empty table: %v", err)
	}
	if len(raw.Rows) != 0 || len(raw.Columns) == 0 {
		t.Fatalf("unexpected raw table: %d cols, %d rows", len(raw.Columns), len(raw.Rows))
	}
}

func TestStoreLoadMissingSheetIsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "other.xlsx")

	f := excelize.NewFile()
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	f.Close()

	store := NewStore(path, "Sales", dir)
	_, err := store.Load(context.Background())
	if !core.IsMalformedInput(err) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
}

func TestExportIncludesDerivedColumns(t *testing.T) {
	table := &core.Table{
		Records: []core.Record{{
			OrderNo:     "ORD-7",
			NetSales:    decimal.NewFromInt(900),
			Outstanding: decimal.NewFromInt(400),
		}},
	}

	data, err := Export(table)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen export: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("read export sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	header := rows[0]
	if header[len(header)-2] != "net_sales" || header[len(header)-1] != "outstanding" {
		t.Errorf("derived columns missing from header: %v", header)
	}
}
