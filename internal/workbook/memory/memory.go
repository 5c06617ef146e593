// Package memory is an in-memory workbook used by tests and local
// development without a spreadsheet.
package memory

import (
	"context"
	"fmt"
	"sync"

	"salesledger/internal/core"
	"salesledger/internal/normalize"
	"salesledger/internal/workbook"
)

type Store struct {
	mu   sync.Mutex
	cols []string
	rows [][]any
}

var (
	_ workbook.TableLoader    = (*Store)(nil)
	_ workbook.RecordAppender = (*Store)(nil)
)

func New() *Store {
	return &Store{cols: workbook.Header()}
}

// NewSeeded creates a store pre-filled with records, handy for tests.
func NewSeeded(records ...core.Record) *Store {
	s := New()
	for _, rec := range records {
		s.rows = append(s.rows, workbook.RecordRow(rec))
	}
	return s
}

// Load returns a copy of the stored table.
func (s *Store) Load(_ context.Context) (normalize.RawTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := normalize.RawTable{Columns: append([]string(nil), s.cols...)}
	for _, row := range s.rows {
		raw.Rows = append(raw.Rows, append([]any(nil), row...))
	}
	return raw, nil
}

// Append stores the record and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, rec core.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, workbook.RecordRow(rec))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Len reports the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
