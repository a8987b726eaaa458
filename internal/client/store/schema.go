package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
)

// EntriesCollection is the collection holding diary entries.
const EntriesCollection = "entries"

// Index declares a secondary index over a top-level record field.
type Index struct {
	Name    string
	KeyPath string
	Unique  bool
}

// Collection declares a record collection, the field holding its key and its
// indexes.
type Collection struct {
	Name    string
	Key     string
	Indexes []Index
}

// Schema is the full set of collections created by the first migration.
type Schema struct {
	Collections []Collection
}

// DefaultSchema returns the entries layout: a unique index mirroring the key,
// a unique index on the client id and non-unique indexes on title and html.
func DefaultSchema() Schema {
	return Schema{Collections: []Collection{{
		Name: EntriesCollection,
		Key:  models.FieldID,
		Indexes: []Index{
			{Name: "id", KeyPath: models.FieldID, Unique: true},
			{Name: "client_id", KeyPath: models.FieldClientID, Unique: true},
			{Name: "title", KeyPath: models.FieldTitle},
			{Name: "html", KeyPath: models.FieldHTML},
		},
	}}}
}

// Collection looks a collection up by name.
func (s Schema) Collection(name string) (Collection, bool) {
	i := slices.IndexFunc(s.Collections, func(c Collection) bool { return c.Name == name })
	if i < 0 {
		return Collection{}, false
	}
	return s.Collections[i], true
}

func (s Schema) validate() error {
	if len(s.Collections) == 0 {
		return fmt.Errorf("schema declares no collections")
	}
	seen := map[string]bool{}
	for _, c := range s.Collections {
		if c.Name == "" || c.Key == "" {
			return fmt.Errorf("collection %q: name and key are required", c.Name)
		}
		if seen[c.Name] || c.Name == metadataTable {
			return fmt.Errorf("collection %q declared twice or reserved", c.Name)
		}
		seen[c.Name] = true
		for _, ix := range c.Indexes {
			if ix.Name == "" || ix.KeyPath == "" {
				return fmt.Errorf("collection %q: index name and key path are required", c.Name)
			}
			if ix.KeyPath == docColumn || (ix.KeyPath == keyColumn && c.Key != keyColumn) {
				return fmt.Errorf("collection %q: key path %q is reserved", c.Name, ix.KeyPath)
			}
		}
	}
	return nil
}

const (
	keyColumn = "id"
	docColumn = "doc"
)

// column returns the SQL column holding a key path.
func (c Collection) column(keyPath string) string {
	if keyPath == c.Key {
		return keyColumn
	}
	return quote(keyPath)
}

// index returns the declared index over keyPath.
func (c Collection) index(keyPath string) (Index, bool) {
	i := slices.IndexFunc(c.Indexes, func(ix Index) bool { return ix.KeyPath == keyPath })
	if i < 0 {
		return Index{}, false
	}
	return c.Indexes[i], true
}

// ddl returns the statements creating the collection table and its indexes.
func (c Collection) ddl() []string {
	var cols strings.Builder
	fmt.Fprintf(&cols, "CREATE TABLE %s (\n  %s INTEGER PRIMARY KEY AUTOINCREMENT,\n  %s TEXT NOT NULL CHECK (json_valid(%s))",
		quote(c.Name), keyColumn, docColumn, docColumn)
	for _, ix := range c.Indexes {
		if ix.KeyPath == c.Key {
			continue
		}
		fmt.Fprintf(&cols, ",\n  %s GENERATED ALWAYS AS (json_extract(%s, %s)) VIRTUAL",
			quote(ix.KeyPath), docColumn, jsonPath(ix.KeyPath))
	}
	cols.WriteString("\n)")

	stmts := []string{cols.String()}
	for _, ix := range c.Indexes {
		unique := ""
		if ix.Unique {
			unique = "UNIQUE "
		}
		stmts = append(stmts, fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
			unique, quote(c.Name+"_"+ix.Name), quote(c.Name), c.column(ix.KeyPath)))
	}
	return stmts
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func jsonPath(keyPath string) string {
	p := `$."` + strings.ReplaceAll(keyPath, `"`, `\"`) + `"`
	return "'" + strings.ReplaceAll(p, "'", "''") + "'"
}
