package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/partdex/internal/db"
)

const unreachableDSN = "host=127.0.0.1 port=1 user=partdex dbname=partdex sslmode=disable connect_timeout=1"

func TestOpen_RequiresDSN(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestOpen_DoesNotConnect(t *testing.T) {
	d, err := Open(Config{DSN: unreachableDSN, MaxOpenConns: 4, MaxIdleConns: 2, ConnMaxLifetime: time.Minute})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer d.Close()

	if d.Gorm() == nil {
		t.Fatal("expected gorm handle")
	}
	if got := d.sqlDB.Stats().MaxOpenConnections; got != 4 {
		t.Errorf("MaxOpenConnections = %d, want 4", got)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	d, err := Open(Config{DSN: unreachableDSN})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer d.Close()

	err = d.WaitForReady(context.Background(), 300*time.Millisecond)
	if !errors.Is(err, db.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}
