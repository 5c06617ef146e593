// Package excel stores the transaction table in a local .xlsx workbook,
// the same file the accountants keep opening by hand. Every write backs up
// the file first.
package excel

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"salesledger/internal/core"
	"salesledger/internal/normalize"
	"salesledger/internal/workbook"

	"github.com/xuri/excelize/v2"
)

type Store struct {
	path      string
	sheet     string
	backupDir string
}

// Interface conformance.
var (
	_ workbook.TableLoader    = (*Store)(nil)
	_ workbook.RecordAppender = (*Store)(nil)
)

// NewStore creates a store for the given workbook path. backupDir may be
// empty, in which case backups land next to the workbook.
func NewStore(path, sheet, backupDir string) *Store {
	if sheet == "" {
		sheet = "Sheet1"
	}
	if backupDir == "" {
		backupDir = filepath.Dir(path)
	}
	return &Store{path: path, sheet: sheet, backupDir: backupDir}
}

// Load reads the whole sheet. A missing file yields an empty table with
// the canonical header, matching how the dashboard treats a fresh month.
func (s *Store) Load(_ context.Context) (normalize.RawTable, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return normalize.RawTable{Columns: workbook.Header()}, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return normalize.RawTable{}, &core.MalformedInputError{
			Reason: fmt.Sprintf("open workbook %s: %v", s.path, err),
		}
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return normalize.RawTable{}, &core.MalformedInputError{
			Reason: fmt.Sprintf("sheet %q not readable: %v", s.sheet, err),
		}
	}
	if len(rows) == 0 {
		return normalize.RawTable{Columns: workbook.Header()}, nil
	}

	raw := normalize.RawTable{Columns: rows[0]}
	for _, row := range rows[1:] {
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		raw.Rows = append(raw.Rows, cells)
	}
	return raw, nil
}

// Append backs up the workbook, then writes the record to the first free
// row. The file and sheet are created when absent.
func (s *Store) Append(_ context.Context, rec core.Record) (string, error) {
	if err := s.backup(); err != nil {
		return "", fmt.Errorf("backup workbook: %w", err)
	}

	f, created, err := s.open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	nextRow := 2
	if !created {
		rows, err := f.GetRows(s.sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", s.sheet, err)
		}
		nextRow = len(rows) + 1
		if nextRow == 1 {
			// Empty sheet: write the header first.
			if err := s.writeHeader(f); err != nil {
				return "", err
			}
			nextRow = 2
		}
	}

	cell := fmt.Sprintf("A%d", nextRow)
	row := workbook.RecordRow(rec)
	if err := f.SetSheetRow(s.sheet, cell, &row); err != nil {
		return "", fmt.Errorf("write row %d: %w", nextRow, err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	return fmt.Sprintf("%s!A%d", s.sheet, nextRow), nil
}

func (s *Store) open() (f *excelize.File, created bool, err error) {
	if _, statErr := os.Stat(s.path); os.IsNotExist(statErr) {
		f = excelize.NewFile()
		if s.sheet != "Sheet1" {
			if _, err := f.NewSheet(s.sheet); err != nil {
				f.Close()
				return nil, false, fmt.Errorf("create sheet %q: %w", s.sheet, err)
			}
		}
		if err := s.writeHeader(f); err != nil {
			f.Close()
			return nil, false, err
		}
		return f, true, nil
	}

	f, err = excelize.OpenFile(s.path)
	if err != nil {
		return nil, false, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	return f, false, nil
}

func (s *Store) writeHeader(f *excelize.File) error {
	header := make([]any, 0, len(workbook.Header()))
	for _, name := range workbook.Header() {
		header = append(header, name)
	}
	if err := f.SetSheetRow(s.sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// backup copies the current workbook aside before a write, mirroring the
// manual _backup_ copies the accountants used to make.
func (s *Store) backup() error {
	src, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return err
	}

	base := filepath.Base(s.path)
	ext := filepath.Ext(base)
	stamp := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("%s_backup_%s%s", base[:len(base)-len(ext)], stamp, ext)

	dst, err := os.Create(filepath.Join(s.backupDir, name))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
