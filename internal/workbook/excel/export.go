package excel

import (
	"bytes"
	"fmt"

	"salesledger/internal/core"
	"salesledger/internal/workbook"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "SalesData"

// Export renders a table as an .xlsx workbook for download. Derived fields
// are written alongside the source columns so the exported report matches
// what the dashboard showed.
func Export(t *core.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create export sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	header := make([]any, 0, len(workbook.Header())+2)
	for _, name := range workbook.Header() {
		header = append(header, name)
	}
	header = append(header, "net_sales", "outstanding")
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, rec := range t.Records {
		row := workbook.RecordRow(rec)
		row = append(row, rec.NetSales.InexactFloat64(), rec.Outstanding.InexactFloat64())
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
