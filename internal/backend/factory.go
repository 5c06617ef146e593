package backend

import (
	"context"
	"fmt"
	"log/slog"

	"salesledger/internal/config"
	"salesledger/internal/workbook"
	"salesledger/internal/workbook/excel"
	"salesledger/internal/workbook/google"
	"salesledger/internal/workbook/memory"
)

// Workbook is a backend that can both serve the full table and take appends.
type Workbook interface {
	workbook.TableLoader
	workbook.RecordAppender
}

// New builds the configured workbook backend.
func New(ctx context.Context, cfg *config.Config) (Workbook, error) {
	switch cfg.DataBackend {
	case config.BackendExcel:
		slog.Info("Initialized Excel workbook backend",
			"path", cfg.ExcelFilePath, "sheet", cfg.ExcelSheetName)
		return excel.NewStore(cfg.ExcelFilePath, cfg.ExcelSheetName, cfg.ExcelBackupDir), nil

	case config.BackendSheets:
		client, err := google.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets backend: %w", err)
		}
		slog.Info("Initialized Google Sheets workbook backend",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
		return client, nil

	case config.BackendMemory:
		slog.Info("Initialized memory workbook backend")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown workbook backend %q", cfg.DataBackend)
	}
}
