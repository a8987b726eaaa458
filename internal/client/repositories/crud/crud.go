// Package crud provides a generic repository over one store collection.
//
// Repository[T] maps values of T to store records through a Codec and exposes
// the usual CRUD set. It does no business validation: every error comes from
// the codec or the store and is wrapped as "crud: <collection>: <op>: ...".
package crud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nathanhfoster/turbo-sub002/internal/client/store"
	"github.com/nathanhfoster/turbo-sub002/internal/common"
)

// Store is the subset of *store.Gateway the repository needs.
type Store interface {
	ReadAll(ctx context.Context, collection string) ([]store.Record, error)
	ReadOne(ctx context.Context, collection string, key int64) (store.Record, error)
	PutOne(ctx context.Context, collection string, rec store.Record) (int64, error)
	PutMany(ctx context.Context, collection string, recs []store.Record) ([]int64, error)
	DeleteOne(ctx context.Context, collection string, key int64) error
	Clear(ctx context.Context, collection string) error
	Search(ctx context.Context, collection string, keyPaths []string, term string) ([]store.Record, error)
}

// Codec converts between T and its stored record. The record carries the key
// under the collection's key field; a zero or missing key means unsaved.
type Codec[T any] interface {
	Encode(ctx context.Context, v T) (store.Record, error)
	Decode(ctx context.Context, rec store.Record) (T, error)
}

// JSONCodec round-trips T through encoding/json, so T's JSON shape is its
// record shape.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(_ context.Context, v T) (store.Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec store.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("%T is not a JSON object: %w", v, err)
	}
	return rec, nil
}

func (JSONCodec[T]) Decode(_ context.Context, rec store.Record) (T, error) {
	var v T
	b, err := json.Marshal(rec)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(b, &v)
	return v, err
}

// Repository is a typed view of one collection.
type Repository[T any] struct {
	store      Store
	collection string
	codec      Codec[T]
}

// New binds a repository to collection. A nil codec selects JSONCodec.
func New[T any](s Store, collection string, codec Codec[T]) *Repository[T] {
	if codec == nil {
		codec = JSONCodec[T]{}
	}
	return &Repository[T]{store: s, collection: collection, codec: codec}
}

func (r *Repository[T]) wrap(op string, err error) error {
	return fmt.Errorf("crud: %s: %s: %w", r.collection, op, err)
}

// GetAll returns every stored value in key order.
func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	recs, err := r.store.ReadAll(ctx, r.collection)
	if err != nil {
		return nil, r.wrap("getAll", err)
	}
	out, err := r.decodeAll(ctx, recs)
	if err != nil {
		return nil, r.wrap("getAll", err)
	}
	return out, nil
}

// GetByID returns the value stored under id. ok is false when there is none.
func (r *Repository[T]) GetByID(ctx context.Context, id int64) (v T, ok bool, err error) {
	rec, err := r.store.ReadOne(ctx, r.collection, id)
	if errors.Is(err, common.ErrorNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, r.wrap("getByID", err)
	}
	v, err = r.codec.Decode(ctx, rec)
	if err != nil {
		return v, false, r.wrap("getByID", err)
	}
	return v, true, nil
}

// Save inserts or replaces v and returns its key.
func (r *Repository[T]) Save(ctx context.Context, v T) (int64, error) {
	rec, err := r.codec.Encode(ctx, v)
	if err != nil {
		return 0, r.wrap("save", err)
	}
	id, err := r.store.PutOne(ctx, r.collection, rec)
	if err != nil {
		return 0, r.wrap("save", err)
	}
	return id, nil
}

// SaveMany stores every value in one transaction and returns their keys in
// input order. Nothing is stored if any value fails.
func (r *Repository[T]) SaveMany(ctx context.Context, vs []T) ([]int64, error) {
	recs := make([]store.Record, 0, len(vs))
	for i, v := range vs {
		rec, err := r.codec.Encode(ctx, v)
		if err != nil {
			return nil, r.wrap("saveMany", fmt.Errorf("item %d: %w", i, err))
		}
		recs = append(recs, rec)
	}
	ids, err := r.store.PutMany(ctx, r.collection, recs)
	if err != nil {
		return nil, r.wrap("saveMany", err)
	}
	return ids, nil
}

// Delete removes the value stored under id.
func (r *Repository[T]) Delete(ctx context.Context, id int64) error {
	if err := r.store.DeleteOne(ctx, r.collection, id); err != nil {
		return r.wrap("delete", err)
	}
	return nil
}

// DeleteAll empties the collection.
func (r *Repository[T]) DeleteAll(ctx context.Context) error {
	if err := r.store.Clear(ctx, r.collection); err != nil {
		return r.wrap("deleteAll", err)
	}
	return nil
}

// Find returns the values whose indexed keyPaths contain term.
func (r *Repository[T]) Find(ctx context.Context, keyPaths []string, term string) ([]T, error) {
	recs, err := r.store.Search(ctx, r.collection, keyPaths, term)
	if err != nil {
		return nil, r.wrap("find", err)
	}
	out, err := r.decodeAll(ctx, recs)
	if err != nil {
		return nil, r.wrap("find", err)
	}
	return out, nil
}

func (r *Repository[T]) decodeAll(ctx context.Context, recs []store.Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := r.codec.Decode(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
