package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"salesledger/internal/storage"
	"salesledger/internal/workbook"
)

// SyncProcessorConfig holds configuration for the workbook sync poll loop.
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending transactions.
	PollInterval time.Duration

	// BatchSize is the max number of transactions per poll cycle.
	BatchSize int
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 10 * time.Second,
		BatchSize:    10,
	}
}

// SyncProcessor drains locally stored transactions into the workbook of
// record. It is the safety net behind the AMQP notifications: even when the
// broker is down, pending rows land in the workbook within one poll cycle.
type SyncProcessor struct {
	repo     *storage.SQLiteRepository
	appender workbook.RecordAppender
	config   SyncProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(repo *storage.SQLiteRepository, appender workbook.RecordAppender, config SyncProcessorConfig) *SyncProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncProcessorConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultSyncProcessorConfig().BatchSize
	}
	return &SyncProcessor{
		repo:     repo,
		appender: appender,
		config:   config,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning reports whether the processor loop is active.
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on startup.
	p.ProcessBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch drains one batch of pending transactions into the workbook.
// It returns the number of transactions synced.
func (p *SyncProcessor) ProcessBatch(ctx context.Context) int {
	pending, err := p.repo.PendingSync(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load pending transactions", "error", err)
		return 0
	}
	if len(pending) == 0 {
		return 0
	}

	slog.DebugContext(ctx, "Processing sync batch", "count", len(pending))

	synced := 0
	for _, tx := range pending {
		select {
		case <-p.stopCh:
			return synced
		case <-ctx.Done():
			return synced
		default:
		}

		if err := p.SyncOne(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction",
				"id", tx.ID, "error", err)
			// Leave it pending; the next cycle retries.
			continue
		}
		synced++
	}

	return synced
}

// SyncOne appends a single pending transaction to the workbook and marks it
// synced under the returned cell reference.
func (p *SyncProcessor) SyncOne(ctx context.Context, tx storage.PendingTransaction) error {
	ref, err := p.appender.Append(ctx, tx.Record)
	if err != nil {
		return fmt.Errorf("append to workbook: %w", err)
	}

	if err := p.repo.MarkSynced(ctx, tx.ID, ref); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction synced to workbook", "id", tx.ID, "ref", ref)
	return nil
}
