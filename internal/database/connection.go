package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nfrund/eventhub/internal/config"
	"github.com/surrealdb/surrealdb.go"
)

// Backoff retries an operation with exponentially growing, jittered delays.
type Backoff struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	multiplier float64
	jitter     bool
}

// NewBackoff returns a Backoff with five retries starting at 100ms.
func NewBackoff() *Backoff {
	return &Backoff{
		maxRetries: 5,
		baseDelay:  100 * time.Millisecond,
		maxDelay:   30 * time.Second,
		multiplier: 2.0,
		jitter:     true,
	}
}

// Retry calls fn until it succeeds, the retries are exhausted or ctx ends.
func (b *Backoff) Retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == b.maxRetries {
			break
		}

		delay := b.delay(attempt)
		slog.DebugContext(ctx, "Retrying database operation",
			"event", "db_retry_attempt",
			"attempt", attempt+1, "max_attempts", b.maxRetries+1,
			"delay_ms", delay.Milliseconds(), "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("operation failed after %d attempts: %w", b.maxRetries+1, lastErr)
}

func (b *Backoff) delay(attempt int) time.Duration {
	d := float64(b.baseDelay) * math.Pow(b.multiplier, float64(attempt))
	if d > float64(b.maxDelay) {
		d = float64(b.maxDelay)
	}
	if b.jitter {
		// up to 25% extra
		d += rand.Float64() * d * 0.25
	}
	return time.Duration(d)
}

// Conn runs a function against a live database handle.
type Conn interface {
	WithConnection(ctx context.Context, fn func(*surrealdb.DB) error) error
}

// Connection owns the SurrealDB handle, reconnecting when it is lost.
type Connection struct {
	cfg     config.Provider
	conn    *surrealdb.DB
	backoff *Backoff
	mu      sync.RWMutex
	healthy bool
	done    chan struct{}
	once    sync.Once
}

// NewConnection creates an unconnected Connection. Call Connect before use.
func NewConnection(cfg config.Provider) *Connection {
	return &Connection{
		cfg:     cfg,
		backoff: NewBackoff(),
		done:    make(chan struct{}),
	}
}

// Connect opens the connection, retrying with backoff.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}
	return c.backoff.Retry(ctx, func() error {
		return c.reconnect(ctx)
	})
}

// WithConnection runs fn with the current handle. When fn fails with a
// connection error the handle is re-established and fn retried.
func (c *Connection) WithConnection(ctx context.Context, fn func(*surrealdb.DB) error) error {
	conn := c.current()
	if conn == nil {
		return NewDBError(ErrNotConnected, "database not connected")
	}

	err := fn(conn)
	if err == nil || !isConnectionError(err) {
		return err
	}

	slog.WarnContext(ctx, "Database operation failed, reconnecting",
		"event", "db_reconnect_triggered", "error", err, "db_url", redactDBURL(c.cfg.GetDBURL()))

	return c.backoff.Retry(ctx, func() error {
		if rerr := c.forceReconnect(ctx); rerr != nil {
			return fmt.Errorf("reconnection failed: %w (original error: %v)", rerr, err)
		}
		return fn(c.current())
	})
}

// StartMonitoring runs periodic health checks until Close.
func (c *Connection) StartMonitoring() {
	go c.monitor()
}

// Close stops monitoring and closes the handle.
func (c *Connection) Close(ctx context.Context) error {
	c.once.Do(func() { close(c.done) })

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close(ctx)
	c.conn = nil
	c.healthy = false
	return err
}

// IsHealthy reports the result of the last health check.
func (c *Connection) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

func (c *Connection) current() *surrealdb.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// reconnect must be called with c.mu held.
func (c *Connection) reconnect(ctx context.Context) error {
	if c.conn != nil {
		_ = c.conn.Close(ctx)
		c.conn = nil
	}

	dbURL := c.cfg.GetDBURL()
	slog.DebugContext(ctx, "Connecting to database", "event", "db_connect_attempt", "db_url", redactDBURL(dbURL))

	conn, err := surrealdb.FromEndpointURLString(ctx, dbURL)
	if err != nil {
		c.healthy = false
		slog.ErrorContext(ctx, "Failed to create database connection",
			"event", "db_connect_failure", "db_url", redactDBURL(dbURL), "error", err)
		return fmt.Errorf("connect to %s: %w", redactDBURL(dbURL), err)
	}

	if c.cfg.GetDBUser() != "" {
		auth := &surrealdb.Auth{Username: c.cfg.GetDBUser(), Password: c.cfg.GetDBPass()}
		if _, err := conn.SignIn(ctx, auth); err != nil {
			_ = conn.Close(ctx)
			c.healthy = false
			slog.ErrorContext(ctx, "Failed to sign in to database",
				"event", "db_auth_failure", "user", c.cfg.GetDBUser(), "error", err)
			return fmt.Errorf("sign in: %w", err)
		}
	}

	if err := conn.Use(ctx, c.cfg.GetDBNs(), c.cfg.GetDBDb()); err != nil {
		_ = conn.Close(ctx)
		c.healthy = false
		slog.ErrorContext(ctx, "Failed to select namespace/database",
			"event", "db_namespace_failure", "namespace", c.cfg.GetDBNs(), "database", c.cfg.GetDBDb(), "error", err)
		return fmt.Errorf("use namespace/db: %w", err)
	}

	c.conn = conn
	c.healthy = true
	slog.InfoContext(ctx, "Database connection established",
		"event", "db_connect_success", "db_url", redactDBURL(dbURL),
		"namespace", c.cfg.GetDBNs(), "database", c.cfg.GetDBDb())
	return nil
}

func (c *Connection) forceReconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnect(ctx)
}

func (c *Connection) monitor() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := c.checkHealth(ctx); err != nil {
				slog.WarnContext(ctx, "Database health check failed",
					"event", "db_health_check_failure", "error", err)
				if rerr := c.backoff.Retry(ctx, func() error { return c.forceReconnect(ctx) }); rerr != nil {
					slog.ErrorContext(ctx, "Failed to reconnect to database",
						"event", "db_reconnect_failure", "error", rerr)
				}
			}
			cancel()
		}
	}
}

func (c *Connection) checkHealth(ctx context.Context) error {
	conn := c.current()
	if conn == nil {
		c.setHealthy(false)
		return errors.New("no active database connection")
	}
	if _, err := conn.Version(ctx); err != nil {
		c.setHealthy(false)
		return fmt.Errorf("version check: %w", err)
	}
	c.setHealthy(true)
	return nil
}

func (c *Connection) setHealthy(v bool) {
	c.mu.Lock()
	c.healthy = v
	c.mu.Unlock()
}

// isConnectionError reports whether err looks like a lost connection rather
// than a query failure.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "unexpected eof") ||
		strings.Contains(msg, "use of closed network connection")
}

// redactDBURL hides the password of dbURL for logging.
func redactDBURL(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	return u.Redacted()
}
