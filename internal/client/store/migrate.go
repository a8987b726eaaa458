package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/nathanhfoster/turbo-sub002/internal/logging"
)

// SchemaVersion is the version Open upgrades every database to.
const SchemaVersion int64 = 2

const metadataTable = "metadata"

// migrations builds the versioned upgrade steps. Each step runs in its own
// transaction, so the collections and their seed records land together.
func migrations(schema Schema, seeds map[string][]Record) []*goose.Migration {
	v1 := goose.NewGoMigration(1,
		&goose.GoFunc{RunTx: func(ctx context.Context, tx *sql.Tx) error {
			for _, c := range schema.Collections {
				for _, stmt := range c.ddl() {
					if _, err := tx.ExecContext(ctx, stmt); err != nil {
						return fmt.Errorf("create %s: %w", c.Name, err)
					}
				}
				for i, rec := range seeds[c.Name] {
					if _, err := putRecord(ctx, tx, c, rec); err != nil {
						return fmt.Errorf("seed %s[%d]: %w", c.Name, i, err)
					}
				}
			}
			return nil
		}},
		&goose.GoFunc{RunTx: func(ctx context.Context, tx *sql.Tx) error {
			for _, c := range schema.Collections {
				if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(c.Name)); err != nil {
					return err
				}
			}
			return nil
		}},
	)

	v2 := goose.NewGoMigration(2,
		&goose.GoFunc{RunTx: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
)`)
			return err
		}},
		&goose.GoFunc{RunTx: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS metadata`)
			return err
		}},
	)

	return []*goose.Migration{v1, v2}
}

func newProvider(db *sql.DB, schema Schema, seeds map[string][]Record) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectSQLite3, db, nil,
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(migrations(schema, seeds)...),
	)
}

// upgrade applies pending migrations. An up-to-date database is left
// untouched.
func upgrade(ctx context.Context, p *goose.Provider, log logging.Logger) error {
	results, err := p.Up(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		log.Info(ctx, "store: migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}
