package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/nathanhfoster/turbo-sub002/internal/common"
	"github.com/nathanhfoster/turbo-sub002/internal/dbx"
	"github.com/nathanhfoster/turbo-sub002/internal/logging"
)

// Record is a stored object. The collection key lives under Collection.Key.
type Record = map[string]any

// DefaultOpTimeout bounds every primitive unless WithOpTimeout says otherwise.
const DefaultOpTimeout = 5 * time.Second

// pragmas are applied by the driver on every new connection. _txlock makes
// BEGIN take the write lock up front, so concurrent writers wait on
// busy_timeout instead of failing on lock upgrade.
const pragmas = "_pragma=busy_timeout(10000)" +
	"&_pragma=foreign_keys(1)" +
	"&_pragma=journal_mode(WAL)" +
	"&_pragma=synchronous(NORMAL)" +
	"&_txlock=immediate"

type options struct {
	schema    Schema
	opTimeout time.Duration
	seeds     map[string][]Record
	log       logging.Logger
}

// Option customises Open.
type Option func(*options)

// WithSchema replaces DefaultSchema.
func WithSchema(s Schema) Option { return func(o *options) { o.schema = s } }

// WithOpTimeout bounds every primitive. Non-positive values keep the default.
func WithOpTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.opTimeout = d
		}
	}
}

// WithSeed queues records inserted into collection when the database is
// first created. Existing databases are never reseeded.
func WithSeed(collection string, records ...Record) Option {
	return func(o *options) {
		o.seeds[collection] = append(o.seeds[collection], records...)
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l logging.Logger) Option { return func(o *options) { o.log = l } }

// Gateway is an open store.
type Gateway struct {
	db        *sql.DB
	provider  *goose.Provider
	schema    Schema
	opTimeout time.Duration
	log       logging.Logger
}

// Open opens (creating if needed) the database at path and upgrades it to
// SchemaVersion. Every failure wraps ErrOpen.
func Open(ctx context.Context, path string, opts ...Option) (*Gateway, error) {
	o := options{
		schema:    DefaultSchema(),
		opTimeout: DefaultOpTimeout,
		seeds:     map[string][]Record{},
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.schema.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	for name := range o.seeds {
		if _, ok := o.schema.Collection(name); !ok {
			return nil, fmt.Errorf("%w: seed for %q: %w", ErrOpen, name, ErrUnknownCollection)
		}
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOpen)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: mkdir: %w", ErrOpen, err)
	}

	db, err := sql.Open("sqlite", path+"?"+pragmas)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrOpen, err)
	}

	p, err := newProvider(db, o.schema, o.seeds)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if err := upgrade(ctx, p, o.log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: upgrade: %w", ErrOpen, err)
	}

	o.log.Debug(ctx, "store: opened", "path", path)

	return &Gateway{
		db:        db,
		provider:  p,
		schema:    o.schema,
		opTimeout: o.opTimeout,
		log:       o.log,
	}, nil
}

// Close releases the database.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// DB exposes the underlying handle for repositories working on tables
// outside the collections (metadata).
func (g *Gateway) DB() dbx.DBTX {
	return g.db
}

// Version returns the schema version recorded in the database.
func (g *Gateway) Version(ctx context.Context) (int64, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return g.provider.GetDBVersion(ctx)
}

// Schema returns the schema the gateway was opened with.
func (g *Gateway) Schema() Schema {
	return g.schema
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.opTimeout)
}

// run is the single path from a primitive to its result: it resolves the
// collection, bounds the call with the operation timeout, runs fn in a
// transaction of the given mode and reports any failure as an *OpError.
func (g *Gateway) run(ctx context.Context, collection, op string, mode dbx.Mode, fn func(ctx context.Context, tx dbx.DBTX, c Collection) error) error {
	c, ok := g.schema.Collection(collection)
	if !ok {
		return &OpError{Collection: collection, Op: op, Err: ErrUnknownCollection}
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	err := dbx.RunTx(ctx, g.db, mode.Options(), func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, tx, c)
	})
	if err == nil {
		return nil
	}
	if cerr := ctx.Err(); cerr != nil && !errors.Is(err, cerr) {
		err = fmt.Errorf("%w: %w", cerr, err)
	}
	return &OpError{Collection: collection, Op: op, Err: err}
}

// ReadAll returns every record of collection in key order.
func (g *Gateway) ReadAll(ctx context.Context, collection string) ([]Record, error) {
	var out []Record
	err := g.run(ctx, collection, "readAll", dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX, c Collection) error {
		var err error
		out, err = queryRecords(ctx, tx, c, fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY %s",
			keyColumn, docColumn, quote(c.Name), keyColumn))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadOne returns the record stored under key. A missing record is reported
// with common.ErrorNotFound.
func (g *Gateway) ReadOne(ctx context.Context, collection string, key int64) (Record, error) {
	var out Record
	err := g.run(ctx, collection, "readOne", dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX, c Collection) error {
		var doc string
		q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", docColumn, quote(c.Name), keyColumn)
		if err := tx.QueryRowContext(ctx, q, key).Scan(&doc); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("key %d: %w", key, common.ErrorNotFound)
			}
			return err
		}
		rec, err := decode(c, key, doc)
		out = rec
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PutOne inserts or replaces a record and returns its key. Records without a
// key get a fresh one.
func (g *Gateway) PutOne(ctx context.Context, collection string, rec Record) (int64, error) {
	var key int64
	err := g.run(ctx, collection, "putOne", dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX, c Collection) error {
		var err error
		key, err = putRecord(ctx, tx, c, rec)
		return err
	})
	if err != nil {
		return 0, err
	}
	return key, nil
}

// PutMany writes every record in one transaction. Either all of them are
// stored or none is. It returns the keys in input order.
func (g *Gateway) PutMany(ctx context.Context, collection string, recs []Record) ([]int64, error) {
	keys := make([]int64, 0, len(recs))
	err := g.run(ctx, collection, "putMany", dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX, c Collection) error {
		keys = keys[:0]
		for i, rec := range recs {
			key, err := putRecord(ctx, tx, c, rec)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteOne removes the record stored under key. Deleting a missing key is
// not an error.
func (g *Gateway) DeleteOne(ctx context.Context, collection string, key int64) error {
	return g.run(ctx, collection, "deleteOne", dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX, c Collection) error {
		_, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quote(c.Name), keyColumn), key)
		return err
	})
}

// Clear removes every record of collection.
func (g *Gateway) Clear(ctx context.Context, collection string) error {
	return g.run(ctx, collection, "clear", dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX, c Collection) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM "+quote(c.Name))
		return err
	})
}

// Search returns, in key order, the records whose value under any of the
// given indexed key paths contains term (case-insensitive for ASCII). An
// empty term matches everything.
func (g *Gateway) Search(ctx context.Context, collection string, keyPaths []string, term string) ([]Record, error) {
	var out []Record
	err := g.run(ctx, collection, "search", dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX, c Collection) error {
		if len(keyPaths) == 0 {
			return fmt.Errorf("%w: no key paths", ErrUnknownIndex)
		}
		conds := make([]string, 0, len(keyPaths))
		args := make([]any, 0, len(keyPaths))
		pattern := "%" + escapeLike(term) + "%"
		for _, kp := range keyPaths {
			if _, ok := c.index(kp); !ok {
				return fmt.Errorf("%w: %q", ErrUnknownIndex, kp)
			}
			conds = append(conds, fmt.Sprintf(`CAST(%s AS TEXT) LIKE ? ESCAPE '\'`, c.column(kp)))
			args = append(args, pattern)
		}
		where := strings.Join(conds, " OR ")
		if term == "" {
			where, args = "1", nil
		}
		q := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s ORDER BY %s",
			keyColumn, docColumn, quote(c.Name), where, keyColumn)

		var err error
		out, err = queryRecords(ctx, tx, c, q, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func queryRecords(ctx context.Context, tx dbx.DBTX, c Collection, q string, args ...any) ([]Record, error) {
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			key int64
			doc string
		)
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, err
		}
		rec, err := decode(c, key, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func decode(c Collection, key int64, doc string) (Record, error) {
	rec := Record{}
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decode key %d: %w", key, err)
	}
	rec[c.Key] = key
	return rec, nil
}

// putRecord upserts rec by key, or inserts it under a new key when it has
// none. Index constraints apply to both paths.
func putRecord(ctx context.Context, tx dbx.DBTX, c Collection, rec Record) (int64, error) {
	key, hasKey, err := keyOf(rec[c.Key])
	if err != nil {
		return 0, err
	}

	doc := maps.Clone(rec)
	delete(doc, c.Key)
	b, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}

	if hasKey {
		q := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?) ON CONFLICT(%s) DO UPDATE SET %s = excluded.%s",
			quote(c.Name), keyColumn, docColumn, keyColumn, docColumn, docColumn)
		if _, err := tx.ExecContext(ctx, q, key, string(b)); err != nil {
			return 0, err
		}
		return key, nil
	}

	res, err := tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", quote(c.Name), docColumn), string(b))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// keyOf reads a record key. Absent, nil and zero keys mean "unassigned".
func keyOf(v any) (int64, bool, error) {
	var key int64
	switch k := v.(type) {
	case nil:
		return 0, false, nil
	case int64:
		key = k
	case int:
		key = int64(k)
	case float64:
		if k != math.Trunc(k) || math.IsInf(k, 0) {
			return 0, false, fmt.Errorf("%w: %v", ErrInvalidKey, v)
		}
		key = int64(k)
	case json.Number:
		n, err := k.Int64()
		if err != nil {
			return 0, false, fmt.Errorf("%w: %v", ErrInvalidKey, v)
		}
		key = n
	default:
		return 0, false, fmt.Errorf("%w: %v", ErrInvalidKey, v)
	}
	if key < 0 {
		return 0, false, fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}
	return key, key != 0, nil
}
