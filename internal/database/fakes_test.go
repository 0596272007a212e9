package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nfrund/eventhub/internal/config"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go"
)

type call struct {
	query  string
	params map[string]any
}

// fakeExecutor records every statement and answers from a queue.
type fakeExecutor[T any] struct {
	mu      sync.Mutex
	calls   []call
	results [][]T
	errs    []error
}

func (f *fakeExecutor[T]) push(rows []T, err error) {
	f.results = append(f.results, rows)
	f.errs = append(f.errs, err)
}

func (f *fakeExecutor[T]) Query(_ context.Context, query string, params map[string]any) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{query: query, params: params})
	if len(f.results) == 0 {
		return nil, nil
	}
	rows, err := f.results[0], f.errs[0]
	f.results, f.errs = f.results[1:], f.errs[1:]
	return rows, err
}

func (f *fakeExecutor[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	_, err := f.Query(ctx, query, params)
	return err
}

type nopConn struct{}

func (nopConn) WithConnection(context.Context, func(*surrealdb.DB) error) error {
	return ErrNotConnected
}

func testConfig() *config.Config {
	return &config.Config{
		DBQueryTimeout:   time.Second,
		DBExecuteTimeout: 2 * time.Second,
	}
}

func fixedNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}

func newTestMessageStore(t *testing.T) (*MessageStore, *fakeExecutor[messageRecord]) {
	t.Helper()
	exec := &fakeExecutor[messageRecord]{}
	store, err := NewMessageStore(nopConn{}, testConfig(), WithExecutor[messageRecord](exec))
	require.NoError(t, err)
	return store, exec
}
