package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"salesledger/internal/amqp"
	applog "salesledger/internal/log"
	"salesledger/internal/storage"
	"salesledger/internal/workbook"
)

// SyncWorker moves stored transactions from SQLite into the workbook of
// record. It is driven by AMQP notifications, with periodic pending scans as
// the recovery path for lost messages.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	appender  workbook.RecordAppender
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, appender workbook.RecordAppender, batchSize int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	tx, err := w.storage.GetByID(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Already cleaned up or never committed; nothing to sync.
		slog.WarnContext(ctx, "Transaction not found, dropping message", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.syncToWorkbook(ctx, tx)
}

// ProcessPending appends transactions the notifications missed. This is the
// backup mechanism behind AMQP delivery.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", applog.FieldRowCount, len(pending))

	for _, tx := range pending {
		if err := w.syncToWorkbook(ctx, tx); err != nil {
			fields := applog.NewFields().WithOperation(applog.OpSync).WithError(err)
			fields[applog.FieldTransactionID] = tx.ID
			slog.ErrorContext(ctx, "Failed to sync transaction", fields.ToSlice()...)
			continue
		}
	}
	return nil
}

// StartupSyncCheck drains the backlog that accumulated while the worker was
// down. It uses a larger batch than the steady-state scan.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		applog.FieldOperation, applog.OpStartup,
		applog.FieldRowCount, len(pending))

	synced, failed := 0, 0
	for _, tx := range pending {
		if err := w.syncToWorkbook(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				applog.FieldTransactionID, tx.ID, applog.FieldError, err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		applog.FieldOperation, applog.OpStartup,
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

func (w *SyncWorker) syncToWorkbook(ctx context.Context, tx storage.PendingTransaction) error {
	ref, err := w.appender.Append(ctx, tx.Record)
	if err != nil {
		return fmt.Errorf("append to workbook: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, tx.ID, ref); err != nil {
		// The append itself worked; the next scan will retry the mark.
		slog.ErrorContext(ctx, "Failed to mark as synced",
			applog.FieldTransactionID, tx.ID, applog.FieldError, err)
	}

	fields := applog.NewFields().
		WithOperation(applog.OpSync).
		WithTransaction(tx.ID, tx.Record.OrderNo, tx.Record.CustomerName, tx.Record.SalesExecutive)
	fields[applog.FieldSheetRef] = ref
	slog.InfoContext(ctx, "Transaction synced to workbook", fields.ToSlice()...)

	return nil
}
