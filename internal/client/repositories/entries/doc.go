// Package entries provides the client-side persistence layer for diary
// entries.
//
// # Overview
//
// The package defines a Repository interface for CRUD and search operations
// on Entry models (see internal/client/models). The SQLite-backed
// implementation (SQLiteRepository) binds the generic crud repository to the
// entries collection of a store.Gateway.
//
// # Data Model
//
// Entries are stored in their flattened form (see internal/client/transform):
// every field is a string except the integer key. Reads decode them back into
// typed models.Entry values. Values that fail to decode are kept raw in
// Entry.Extra, so nothing is lost on a save/load cycle.
//
// # Concurrency
//
// SQLiteRepository is safe for concurrent use; every call runs in its own
// store transaction.
//
// Typical Usage
//
//	repo := entries.NewSQLiteRepository(gateway, transform.New(log))
//	id, _ := repo.Save(ctx, entry)
//	list, _ := repo.GetAll(ctx)
//	one, ok, _ := repo.GetByID(ctx, id)
//	hits, _ := repo.Search(ctx, "holiday")
//	_ = repo.Delete(ctx, id)
package entries
