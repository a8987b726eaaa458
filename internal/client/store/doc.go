// Package store is the structured store gateway: a small object-store API
// (collections of JSON records addressed by an auto-incremented integer key,
// with declared secondary indexes) on top of a local SQLite database.
//
// # Overview
//
// Open creates or upgrades the database to SchemaVersion through goose Go
// migrations. Version 1 creates every collection declared by the Schema and
// inserts the seed records passed with WithSeed in the same transaction.
// Version 2 adds the metadata key/value table.
//
// Every primitive (ReadAll, ReadOne, PutOne, PutMany, DeleteOne, Clear,
// Search) runs in its own transaction, bounded by the configured operation
// timeout. Failures are reported as *OpError values naming the collection and
// the operation; errors.Is sees through them.
//
// # Storage layout
//
// A collection is a table with an INTEGER PRIMARY KEY and a doc column holding
// the record without its key. Each index key path is exposed as a virtual
// generated column over json_extract(doc, ...) and indexed, so uniqueness is
// enforced by SQLite itself.
//
// # Concurrency
//
// A Gateway is safe for concurrent use. Handle offers a lazily opened,
// process-wide Gateway with explicit teardown.
package store
