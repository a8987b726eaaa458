// Package transform converts entries between their typed form and the
// flattened string form used for storage, JSON import/export and CSV.
//
// The per-field rules live in a table: every field name maps to a Kind and
// every Kind to a pair of conversion functions. Adding a field is a table
// edit. Field names that are not registered pass through unchanged in both
// directions.
package transform

import (
	"maps"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
)

// Kind tags the conversion rule applied to a field.
type Kind int

const (
	KindIdentity Kind = iota
	KindInt
	KindFloat
	KindBool
	KindList
	KindFiles
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindFiles:
		return "files"
	case KindDate:
		return "date"
	}
	return "unknown"
}

// Func converts one value. exporting=true means typed -> flattened,
// exporting=false means flattened -> typed.
type Func func(value any, exporting bool) any

var kinds = map[Kind]Func{
	KindIdentity: Identity,
	KindInt:      IntTransform,
	KindFloat:    FloatTransform,
	KindBool:     StringToBoolTransform,
	KindList:     EntryTagOrPeopleTransform,
	KindFiles:    EntryFilesTransform,
	KindDate:     DateTransform,
}

var registry = map[string]Kind{
	models.FieldID:                  KindIdentity,
	models.FieldClientID:            KindIdentity,
	models.FieldTitle:               KindIdentity,
	models.FieldHTML:                KindIdentity,
	models.FieldAddress:             KindIdentity,
	models.FieldDateCreated:         KindDate,
	models.FieldDateUpdated:         KindDate,
	models.FieldDateCreatedByAuthor: KindDate,
	models.FieldLatitude:            KindFloat,
	models.FieldLongitude:           KindFloat,
	models.FieldViews:               KindInt,
	models.FieldRating:              KindInt,
	models.FieldSize:                KindInt,
	models.FieldScratchSize:         KindInt,
	models.FieldTags:                KindList,
	models.FieldPeople:              KindList,
	models.FieldFiles:               KindFiles,
	models.FieldIsPublic:            KindBool,
	models.FieldShouldDelete:        KindBool,
	models.FieldShouldPost:          KindBool,
}

// KindOf returns the registered kind of a field.
func KindOf(field string) (Kind, bool) {
	k, ok := registry[field]
	return k, ok
}

// Registered returns a copy of the field table.
func Registered() map[string]Kind {
	return maps.Clone(registry)
}

// Field converts a single field value in the given direction.
func Field(name string, value any, exporting bool) any {
	k, ok := registry[name]
	if !ok {
		return value
	}
	return kinds[k](value, exporting)
}
