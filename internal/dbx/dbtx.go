// Package dbx provides tiny DB abstractions shared by the store and the
// repositories: a minimal interface (DBTX) implemented by both *sql.DB and
// *sql.Tx, and helpers to run functions inside a transaction.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Mode selects the kind of transaction a store operation runs in. With the
// SQLite driver opened with _txlock=immediate, ReadWrite transactions take the
// write lock up front while ReadOnly ones start deferred.
type Mode int

const (
	ReadOnly Mode = iota + 1
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadOnly {
		return "readonly"
	}
	return "readwrite"
}

// Options converts m into the sql.TxOptions passed to BeginTx.
func (m Mode) Options() *sql.TxOptions {
	return &sql.TxOptions{ReadOnly: m == ReadOnly}
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, dbx.ReadWrite.Options(), func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

const maxRetries = 3

// RunTx is WithTx with a bounded retry when SQLite reports the database as
// busy. It makes up to 3 attempts with 50/100 ms backoff and stops early when
// ctx is done. fn must be safe to run more than once.
func RunTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	var err error
	for i := range maxRetries {
		err = WithTx(ctx, db, opts, fn)
		if err == nil || !IsBusy(err) || i == maxRetries-1 {
			return err
		}

		t := time.NewTimer(time.Duration(50*(i+1)) * time.Millisecond)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry interrupted: %w", ctx.Err())
		case <-t.C:
		}
	}
	return err
}

// IsBusy reports whether err indicates an SQLite BUSY or LOCKED condition.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
