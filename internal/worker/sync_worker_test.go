package worker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"salesledger/internal/amqp"
	"salesledger/internal/core"
	"salesledger/internal/storage"
	"salesledger/internal/workbook/memory"
)

func newWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	store := memory.New()
	return NewSyncWorker(repo, store, 10), repo, store
}

func storedRecord(orderNo string) core.Record {
	return core.Record{
		Date: core.NewDate(2025, 6, 15), OrderNo: orderNo,
		CustomerName: "Acme Traders", CustomerType: "Dealer",
		SalesExecutive: "karim",
		SalesAmount:    decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(100),
	}
}

func TestHandleSyncMessage(t *testing.T) {
	w, repo, store := newWorker(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, storedRecord("ORD-1"))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(id)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("workbook rows = %d, want 1", store.Len())
	}

	n, err := repo.CountPending(ctx)
	if err != nil {
		t.Fatalf("CountPending() error = %v", err)
	}
	if n != 0 {
		t.Errorf("CountPending() = %d, want 0", n)
	}
}

func TestHandleSyncMessageUnknownID(t *testing.T) {
	w, _, store := newWorker(t)

	// Unknown ids are dropped, not retried forever.
	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(999)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v, want nil", err)
	}
	if store.Len() != 0 {
		t.Errorf("workbook rows = %d, want 0", store.Len())
	}
}

func TestStartupSyncCheckDrainsBacklog(t *testing.T) {
	w, repo, store := newWorker(t)
	ctx := context.Background()

	for _, no := range []string{"ORD-1", "ORD-2", "ORD-3"} {
		if _, err := repo.Insert(ctx, storedRecord(no)); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}
	if store.Len() != 3 {
		t.Errorf("workbook rows = %d, want 3", store.Len())
	}
}

func TestProcessPendingIsIdempotentWhenEmpty(t *testing.T) {
	w, _, store := newWorker(t)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("workbook rows = %d, want 0", store.Len())
	}
}
