package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/abac-gate/engine/internal/domain/audit"
)

// memAudit is a minimal in-memory audit.Store test double: it records
// every appended record and never fails, so service tests can assert on
// what was emitted without pulling in the file-backed adapter.
type memAudit struct {
	mu      sync.Mutex
	records []audit.Record
}

func newMemAudit() *memAudit {
	return &memAudit{}
}

func (a *memAudit) Append(_ context.Context, records ...audit.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, records...)
	return nil
}

func (a *memAudit) Flush(_ context.Context) error { return nil }

func (a *memAudit) Close() error { return nil }

func (a *memAudit) Recent(n int) []audit.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n > len(a.records) {
		n = len(a.records)
	}
	out := make([]audit.Record, n)
	for i := 0; i < n; i++ {
		out[i] = a.records[len(a.records)-1-i]
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Compile-time interface verification.
var _ audit.Store = (*memAudit)(nil)
