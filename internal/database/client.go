package database

import (
	"context"
	"strings"
	"time"

	"github.com/nfrund/eventhub/internal/config"
	"github.com/surrealdb/surrealdb.go"
)

// Client is a type-safe SurrealQL client for records decoded as T.
type Client[T any] interface {
	// Query returns every row of the first statement's result.
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)
	// QueryOne returns the first row, or nil when there is none.
	QueryOne(ctx context.Context, query string, params map[string]any) (*T, error)
	// Execute runs a statement and discards its result.
	Execute(ctx context.Context, query string, params map[string]any) error
}

// QueryExecutor runs statements against the database. Tests replace it
// through WithExecutor.
type QueryExecutor[T any] interface {
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)
	Execute(ctx context.Context, query string, params map[string]any) error
}

// ClientOption configures a client.
type ClientOption[T any] func(*client[T])

// WithExecutor replaces the SurrealDB executor.
func WithExecutor[T any](executor QueryExecutor[T]) ClientOption[T] {
	return func(c *client[T]) {
		c.executor = executor
	}
}

type client[T any] struct {
	executor       QueryExecutor[T]
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

// NewClient creates a client bound to conn using the configured timeouts.
func NewClient[T any](conn Conn, cfg config.Provider, opts ...ClientOption[T]) (Client[T], error) {
	if conn == nil {
		return nil, NewDBError(ErrInvalidInput, "connection cannot be nil")
	}
	if cfg == nil {
		return nil, NewDBError(ErrInvalidInput, "config provider cannot be nil")
	}
	if cfg.GetDBQueryTimeout() <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_QUERY_TIMEOUT must be a positive duration")
	}
	if cfg.GetDBExecuteTimeout() <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_EXECUTE_TIMEOUT must be a positive duration")
	}

	c := &client[T]{
		executor:       &surrealExecutor[T]{conn: conn},
		queryTimeout:   cfg.GetDBQueryTimeout(),
		executeTimeout: cfg.GetDBExecuteTimeout(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *client[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.timeoutFor(query), c.keyFor(query))
	defer cancel()
	rows, err := c.executor.Query(ctx, query, params)
	if err != nil {
		return nil, NewDBError(err, "query failed").WithQuery(query)
	}
	return rows, nil
}

func (c *client[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	rows, err := c.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *client[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()
	if err := c.executor.Execute(ctx, query, params); err != nil {
		return NewDBError(err, "execute failed").WithQuery(query)
	}
	return nil
}

// Reads use the query timeout; anything that writes uses the execute timeout.
func (c *client[T]) timeoutFor(query string) time.Duration {
	if isRead(query) {
		return c.queryTimeout
	}
	return c.executeTimeout
}

func (c *client[T]) keyFor(query string) ContextKey {
	if isRead(query) {
		return ContextKeyQueryTimeout
	}
	return ContextKeyExecuteTimeout
}

func isRead(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT")
}

type surrealExecutor[T any] struct {
	conn Conn
}

func (e *surrealExecutor[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	var rows []T
	err := e.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		results, err := surrealdb.Query[[]T](ctx, db, query, params)
		if err != nil {
			return err
		}
		if results == nil || len(*results) == 0 {
			return nil
		}
		rows = (*results)[0].Result
		return nil
	})
	return rows, err
}

func (e *surrealExecutor[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	return e.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		_, err := surrealdb.Query[any](ctx, db, query, params)
		return err
	})
}
