package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// stubPostgres swaps the pool seams for the duration of a test.
func stubPostgres(t *testing.T, cfg *pgxpool.Config, newErr, pingErr error) (closed *bool) {
	t.Helper()
	origParse, origNew, origPing, origClose := parsePGConfig, newPGPool, pingPGPool, closePGPool
	t.Cleanup(func() {
		parsePGConfig, newPGPool, pingPGPool, closePGPool = origParse, origNew, origPing, origClose
	})

	closed = new(bool)
	parsePGConfig = func(dsn string) (*pgxpool.Config, error) { return cfg, nil }
	newPGPool = func(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
		if newErr != nil {
			return nil, newErr
		}
		return &pgxpool.Pool{}, nil
	}
	pingPGPool = func(ctx context.Context, pool *pgxpool.Pool) error { return pingErr }
	closePGPool = func(pool *pgxpool.Pool) { *closed = true }
	return closed
}

func TestNewPostgresDB_ParseError(t *testing.T) {
	origParse := parsePGConfig
	t.Cleanup(func() { parsePGConfig = origParse })
	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		return nil, errors.New("bad dsn")
	}

	if _, err := NewPostgresDB("bad"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewPostgresDB_NewPoolError(t *testing.T) {
	stubPostgres(t, &pgxpool.Config{}, errors.New("no pool"), nil)

	if _, err := NewPostgresDB("dsn"); err == nil {
		t.Fatal("expected pool creation error")
	}
}

func TestNewPostgresDB_PingErrorClosesPool(t *testing.T) {
	closed := stubPostgres(t, &pgxpool.Config{}, nil, errors.New("ping failed"))

	if _, err := NewPostgresDB("dsn"); err == nil {
		t.Fatal("expected ping error")
	}
	if !*closed {
		t.Fatal("expected pool to be closed after failed ping")
	}
}

func TestNewPostgresDB_PoolSettings(t *testing.T) {
	cfg := &pgxpool.Config{}
	stubPostgres(t, cfg, nil, nil)

	db, err := NewPostgresDB("dsn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.Pool == nil {
		t.Fatal("expected pool")
	}
	if cfg.MaxConns != 20 || cfg.MinConns != 2 {
		t.Fatalf("unexpected conn bounds: max=%d min=%d", cfg.MaxConns, cfg.MinConns)
	}
	if cfg.MaxConnLifetime != time.Hour || cfg.MaxConnIdleTime != 30*time.Minute {
		t.Fatalf("unexpected lifetimes: %v %v", cfg.MaxConnLifetime, cfg.MaxConnIdleTime)
	}
}

func TestPostgresDB_Close(t *testing.T) {
	closed := stubPostgres(t, &pgxpool.Config{}, nil, nil)

	(&PostgresDB{}).Close()
	if *closed {
		t.Fatal("nil pool must not be closed")
	}

	(&PostgresDB{Pool: &pgxpool.Pool{}}).Close()
	if !*closed {
		t.Fatal("expected pool close")
	}
}

func TestPostgresDB_Health(t *testing.T) {
	stubPostgres(t, &pgxpool.Config{}, nil, errors.New("down"))

	db := &PostgresDB{Pool: &pgxpool.Pool{}}
	if err := db.Health(context.Background()); err == nil {
		t.Fatal("expected health error")
	}
}
