// Package metadata keeps diary bookkeeping, such as when entries were last
// imported or exported, in the store's metadata table.
package metadata

import (
	"context"
	"time"
)

// Bookkeeping keys written by the entry service.
const (
	KeyLastImportAt = "last_import_at"
	KeyLastExportAt = "last_export_at"
)

// Repository reads and writes bookkeeping values by key.
type Repository interface {
	// Get returns the value stored under key; ok is false when there is none.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	All(ctx context.Context) (map[string]string, error)

	GetTime(ctx context.Context, key string) (t time.Time, ok bool, err error)
	SetTime(ctx context.Context, key string, t time.Time) error
}
