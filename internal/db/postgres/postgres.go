package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kailas-cloud/partdex/internal/db"
)

// Config holds connection and pool parameters.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// SlowQuery logs statements slower than this at warn level. Zero disables.
	SlowQuery time.Duration
}

// DB owns a gorm handle and its underlying pool.
type DB struct {
	gorm  *gorm.DB
	sqlDB *sql.DB
}

// Open connects to PostgreSQL and configures the pool. The connection is not
// verified; call WaitForReady before serving.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	logLevel := gormlogger.Silent
	if cfg.SlowQuery > 0 {
		logLevel = gormlogger.Warn
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &DB{gorm: gdb, sqlDB: sqlDB}, nil
}

// Gorm returns the gorm handle for repositories.
func (d *DB) Gorm() *gorm.DB {
	return d.gorm
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.sqlDB.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (d *DB) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := d.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: database: %w", db.ErrNotReady, ctx.Err())
		case <-ticker.C:
		}
	}
}

// AutoMigrate creates or updates tables for the given models.
func (d *DB) AutoMigrate(ctx context.Context, models ...any) error {
	if err := d.gorm.WithContext(ctx).AutoMigrate(models...); err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	return nil
}

// Close releases the pool.
func (d *DB) Close() {
	_ = d.sqlDB.Close()
}
