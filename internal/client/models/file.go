package models

import (
	"encoding/json"
	"maps"
	"time"

	"github.com/nathanhfoster/turbo-sub002/internal/timex"
)

// File is the metadata of a file attached to an entry (the "EntryFiles"
// collection). Keys the model does not know are kept in Extra.
type File struct {
	ID          int64
	EntryID     int64
	Name        string
	Type        string
	Size        int64
	URL         string
	DateCreated time.Time
	DateUpdated time.Time

	Extra map[string]any
}

func (f File) Clone() File {
	if f.Extra != nil {
		f.Extra = maps.Clone(f.Extra)
	}
	return f
}

// MarshalJSON writes the known keys, then Extra. Dates use the canonical
// layout at any depth; zero known dates are omitted.
func (f File) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 8+len(f.Extra))
	m["id"] = f.ID
	m["entry_id"] = f.EntryID
	m["name"] = f.Name
	m["type"] = f.Type
	m["size"] = f.Size
	m["url"] = f.URL
	if !f.DateCreated.IsZero() {
		m["date_created"] = timex.FormatDate(f.DateCreated)
	}
	if !f.DateUpdated.IsZero() {
		m["date_updated"] = timex.FormatDate(f.DateUpdated)
	}
	for k, v := range f.Extra {
		m[k] = timex.FormatDates(v)
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a file object, reviving date-shaped strings found at
// any depth.
func (f *File) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = FileFromMap(raw)
	return nil
}

// FileFromMap builds a File from a decoded JSON object.
func FileFromMap(raw map[string]any) File {
	timex.Revive(raw)

	var f File
	for k, v := range raw {
		ok := true
		switch k {
		case "id":
			f.ID, ok = toInt(v)
		case "entry_id":
			f.EntryID, ok = toInt(v)
		case "size":
			f.Size, ok = toInt(v)
		case "name":
			f.Name, ok = v.(string)
		case "type":
			f.Type, ok = v.(string)
		case "url":
			f.URL, ok = v.(string)
		case "date_created":
			f.DateCreated, ok = timex.ToTime(v)
		case "date_updated":
			f.DateUpdated, ok = timex.ToTime(v)
		default:
			ok = false
		}
		if !ok {
			if f.Extra == nil {
				f.Extra = make(map[string]any)
			}
			f.Extra[k] = v
		}
	}
	return f
}
