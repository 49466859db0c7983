package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrNotReady    = errors.New("db: not ready")
)

// Op constants map to Redis commands or SQL operations for error context.
const (
	OpDel     = "DEL"
	OpGet     = "GET"
	OpSet     = "SET"
	OpPing    = "PING"
	OpSelect  = "SELECT"
	OpInsert  = "INSERT"
	OpCount   = "COUNT"
	OpMigrate = "MIGRATE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
