// Package db opens the analysis store named by a connection URL.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	domain "github.com/bryanwahyu/resume-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/resume-analyzer/internal/infra/db/memory"
	"github.com/bryanwahyu/resume-analyzer/internal/infra/db/mysql"
	"github.com/bryanwahyu/resume-analyzer/internal/infra/db/postgres"
)

// AnalysisStore is a Repository that can also create its own schema.
type AnalysisStore interface {
	domain.Repository
	Migrate(ctx context.Context) error
}

// Handle owns the store and its connection pool. DB is nil for the memory driver.
type Handle struct {
	Driver string
	Store  AnalysisStore
	DB     *sql.DB
}

// Open picks a driver from the URL scheme:
// postgres:// or postgresql:// (lib/pq), mysql:// (go-sql-driver), memory://.
func Open(ctx context.Context, rawURL string) (*Handle, error) {
	scheme, err := Scheme(rawURL)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case "postgres", "postgresql":
		conn, err := connect(ctx, "postgres", rawURL, DefaultPool)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		return &Handle{Driver: "postgres", Store: postgres.NewAnalysisRepository(conn), DB: conn}, nil
	case "mysql":
		dsn, err := mysql.DSN(rawURL)
		if err != nil {
			return nil, fmt.Errorf("mysql dsn: %w", err)
		}
		conn, err := connect(ctx, "mysql", dsn, DefaultPool)
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		return &Handle{Driver: "mysql", Store: mysql.NewAnalysisRepository(conn), DB: conn}, nil
	case "memory":
		return &Handle{Driver: "memory", Store: memory.NewAnalysisRepository()}, nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// PoolOptions tunes the *sql.DB pool of the SQL drivers.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

var DefaultPool = PoolOptions{
	MaxOpenConns:    25,
	MaxIdleConns:    10,
	ConnMaxLifetime: 30 * time.Minute,
	PingTimeout:     5 * time.Second,
}

// connect opens a pool and pings it once; the pool is closed again if the ping fails.
func connect(ctx context.Context, driverName, dsn string, p PoolOptions) (*sql.DB, error) {
	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(p.MaxOpenConns)
	conn.SetMaxIdleConns(p.MaxIdleConns)
	conn.SetConnMaxLifetime(p.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, p.PingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Scheme returns the lower-cased scheme of a database URL.
func Scheme(rawURL string) (string, error) {
	i := strings.Index(rawURL, "://")
	if i <= 0 {
		return "", fmt.Errorf("database url must look like <scheme>://...")
	}
	return strings.ToLower(rawURL[:i]), nil
}

// Check implements middleware.HealthChecker.
func (h *Handle) Check(ctx context.Context) error {
	if h.DB == nil {
		return nil
	}
	return h.DB.PingContext(ctx)
}

func (h *Handle) Close() error {
	if h.DB == nil {
		return nil
	}
	return h.DB.Close()
}
