// Package models defines the diary Entry model in its typed (domain) form,
// the keyed Document form the transform pipeline works on, and the field
// names shared by storage, import and export.
package models

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/nathanhfoster/turbo-sub002/internal/common"
)

// Flattened field names. They are the keys of stored documents and of
// exported/imported JSON objects.
const (
	FieldID                  = "id"
	FieldClientID            = "_clientId"
	FieldDateCreated         = "date_created"
	FieldDateUpdated         = "date_updated"
	FieldDateCreatedByAuthor = "date_created_by_author"
	FieldTitle               = "title"
	FieldHTML                = "html"
	FieldAddress             = "address"
	FieldLatitude            = "latitude"
	FieldLongitude           = "longitude"
	FieldViews               = "views"
	FieldRating              = "rating"
	FieldSize                = "size"
	FieldTags                = "tags"
	FieldPeople              = "people"
	FieldFiles               = "EntryFiles"
	FieldIsPublic            = "is_public"
	FieldShouldDelete        = "_shouldDelete"
	FieldShouldPost          = "_shouldPost"
	FieldScratchSize         = "_size"
)

// Fields lists every typed Entry field in export column order.
var Fields = []string{
	FieldID,
	FieldClientID,
	FieldTitle,
	FieldHTML,
	FieldDateCreated,
	FieldDateUpdated,
	FieldDateCreatedByAuthor,
	FieldAddress,
	FieldLatitude,
	FieldLongitude,
	FieldTags,
	FieldPeople,
	FieldFiles,
	FieldViews,
	FieldRating,
	FieldSize,
	FieldIsPublic,
	FieldShouldDelete,
	FieldShouldPost,
	FieldScratchSize,
}

// Named is an element of the tags and people lists.
type Named struct {
	Name string `json:"name"`
}

// Names wraps every name into a Named value.
func Names(names ...string) []Named {
	out := make([]Named, 0, len(names))
	for _, n := range names {
		out = append(out, Named{Name: n})
	}
	return out
}

// Document is the keyed form of an entry: field name to typed value. Unknown
// keys are allowed and carried through untouched.
type Document map[string]any

// Entry is a diary entry in its typed form.
type Entry struct {
	// ID is assigned by the store on first insert; 0 means unsaved.
	ID int64
	// ClientID is a client-assigned correlation id, unique per store.
	ClientID string

	DateCreated         time.Time
	DateUpdated         time.Time
	DateCreatedByAuthor time.Time

	Title   string
	HTML    string
	Address string

	Latitude  float64
	Longitude float64

	Views  int64
	Rating int64
	Size   int64

	Tags   []Named
	People []Named
	Files  []File

	IsPublic     bool
	ShouldDelete bool
	ShouldPost   bool

	// ScratchSize is the client-only "_size" field.
	ScratchSize int64

	// Extra holds fields the model does not know about and raw values of
	// known fields that could not be decoded into their typed form. Both are
	// exported back verbatim.
	Extra map[string]any
}

// NewEntry returns an entry with every field defaulted, a fresh client id
// and all dates set to now (millisecond precision, UTC).
func NewEntry(now time.Time) Entry {
	now = now.UTC().Truncate(time.Millisecond)
	return Entry{
		ClientID:            NewClientID(),
		DateCreated:         now,
		DateUpdated:         now,
		DateCreatedByAuthor: now,
		Tags:                []Named{},
		People:              []Named{},
		Files:               []File{},
	}
}

// NewClientID returns a time-sortable UUIDv7 string.
func NewClientID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Document converts e into its keyed form. Raw values held in Extra take
// precedence over the typed field of the same name, except for the id and
// the client id, which are always the typed values.
func (e Entry) Document() Document {
	doc := Document{
		FieldClientID:            e.ClientID,
		FieldDateCreated:         e.DateCreated,
		FieldDateUpdated:         e.DateUpdated,
		FieldDateCreatedByAuthor: e.DateCreatedByAuthor,
		FieldTitle:               e.Title,
		FieldHTML:                e.HTML,
		FieldAddress:             e.Address,
		FieldLatitude:            e.Latitude,
		FieldLongitude:           e.Longitude,
		FieldViews:               e.Views,
		FieldRating:              e.Rating,
		FieldSize:                e.Size,
		FieldTags:                slices.Clone(e.Tags),
		FieldPeople:              slices.Clone(e.People),
		FieldFiles:               slices.Clone(e.Files),
		FieldIsPublic:            e.IsPublic,
		FieldShouldDelete:        e.ShouldDelete,
		FieldShouldPost:          e.ShouldPost,
		FieldScratchSize:         e.ScratchSize,
	}
	if e.ID != 0 {
		doc[FieldID] = e.ID
	}
	for k, v := range e.Extra {
		if isIdentity(k) {
			continue
		}
		doc[k] = v
	}
	return doc
}

func isIdentity(field string) bool {
	return field == FieldID || field == FieldClientID
}

// FromDocument builds an Entry from its keyed form. Values whose Go type does
// not match the typed field are kept in Extra. An id that is not a positive
// integer and a client id that is not a string are dropped: the entry is
// then unsaved, or gets a fresh client id when stored.
func FromDocument(doc Document) Entry {
	var e Entry
	for k, v := range doc {
		if err := e.assign(k, v); err != nil {
			if isIdentity(k) {
				continue
			}
			if e.Extra == nil {
				e.Extra = make(map[string]any)
			}
			e.Extra[k] = v
		}
	}
	if e.Tags == nil {
		e.Tags = []Named{}
	}
	if e.People == nil {
		e.People = []Named{}
	}
	if e.Files == nil {
		e.Files = []File{}
	}
	return e
}

// Set assigns an already typed value to a known field and clears any raw
// value held for it. The id is immutable and cannot be set.
func (e *Entry) Set(field string, value any) error {
	if field == FieldID || !IsKnownField(field) {
		return fmt.Errorf("%w: %q", common.ErrorUnknownField, field)
	}
	c := *e
	if err := c.assign(field, value); err != nil {
		return err
	}
	*e = c
	delete(e.Extra, field)
	if len(e.Extra) == 0 {
		e.Extra = nil
	}
	return nil
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	c := e
	c.Tags = slices.Clone(e.Tags)
	c.People = slices.Clone(e.People)
	c.Files = make([]File, len(e.Files))
	for i, f := range e.Files {
		c.Files[i] = f.Clone()
	}
	if e.Extra != nil {
		c.Extra = maps.Clone(e.Extra)
	}
	return c
}

// IsKnownField reports whether name is one of the typed Entry fields.
func IsKnownField(name string) bool {
	return slices.Contains(Fields, name)
}

func (e *Entry) assign(field string, v any) error {
	var ok bool
	switch field {
	case FieldID:
		e.ID, ok = toInt(v)
		if ok && e.ID < 0 {
			e.ID, ok = 0, false
		}
	case FieldClientID:
		e.ClientID, ok = v.(string)
	case FieldDateCreated:
		e.DateCreated, ok = v.(time.Time)
	case FieldDateUpdated:
		e.DateUpdated, ok = v.(time.Time)
	case FieldDateCreatedByAuthor:
		e.DateCreatedByAuthor, ok = v.(time.Time)
	case FieldTitle:
		e.Title, ok = v.(string)
	case FieldHTML:
		e.HTML, ok = v.(string)
	case FieldAddress:
		e.Address, ok = v.(string)
	case FieldLatitude:
		e.Latitude, ok = toFloat(v)
	case FieldLongitude:
		e.Longitude, ok = toFloat(v)
	case FieldViews:
		e.Views, ok = toInt(v)
	case FieldRating:
		e.Rating, ok = toInt(v)
	case FieldSize:
		e.Size, ok = toInt(v)
	case FieldScratchSize:
		e.ScratchSize, ok = toInt(v)
	case FieldTags:
		e.Tags, ok = v.([]Named)
	case FieldPeople:
		e.People, ok = v.([]Named)
	case FieldFiles:
		e.Files, ok = v.([]File)
	case FieldIsPublic:
		e.IsPublic, ok = v.(bool)
	case FieldShouldDelete:
		e.ShouldDelete, ok = v.(bool)
	case FieldShouldPost:
		e.ShouldPost, ok = v.(bool)
	default:
		return fmt.Errorf("%w: %q", common.ErrorUnknownField, field)
	}
	if !ok {
		return fmt.Errorf("%w: %s: %T", common.ErrorInvalidValue, field, v)
	}
	return nil
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// SortByAuthorDate orders entries newest first by the author's date, then by
// id for stability.
func SortByAuthorDate(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.DateCreatedByAuthor.Equal(b.DateCreatedByAuthor) {
			return a.DateCreatedByAuthor.After(b.DateCreatedByAuthor)
		}
		return a.ID > b.ID
	})
}
