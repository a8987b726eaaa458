package transform

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
	"github.com/nathanhfoster/turbo-sub002/internal/logging"
)

// Flat is the flattened form of an entry: every registered field holds a
// string, except "id" which stays numeric.
type Flat map[string]any

// Pipeline applies the field table to whole entries. It only logs; it never
// fails.
type Pipeline struct {
	log logging.Logger
}

func New(log logging.Logger) *Pipeline {
	return &Pipeline{log: log}
}

// Export converts every key of doc to its flattened form.
func (p *Pipeline) Export(doc models.Document) Flat {
	flat := make(Flat, len(doc))
	for k, v := range doc {
		flat[k] = Field(k, v, true)
	}
	return flat
}

// Import converts every key of flat to its typed form. Values that fall back
// to their raw form are logged.
func (p *Pipeline) Import(ctx context.Context, flat Flat) models.Document {
	doc := make(models.Document, len(flat))
	for k, v := range flat {
		out := Field(k, v, false)
		if kind, ok := KindOf(k); ok && fellBack(kind, v, out) {
			p.log.Warn(ctx, "transform: kept raw value", "field", k, "kind", kind.String(), "value", v)
		}
		doc[k] = out
	}
	return doc
}

func fellBack(kind Kind, in, out any) bool {
	switch kind {
	case KindInt:
		_, ok := out.(int64)
		return !ok
	case KindFloat:
		f, _ := out.(float64)
		return math.IsNaN(f) && in != "" && in != nil
	case KindDate:
		_, ok := out.(time.Time)
		return !ok
	case KindFiles:
		_, ok := out.([]models.File)
		return !ok
	}
	return false
}

// ToExportable flattens a typed entry.
func (p *Pipeline) ToExportable(e models.Entry) Flat {
	return p.Export(e.Document())
}

// ToDomain builds a typed entry from its flattened form.
func (p *Pipeline) ToDomain(ctx context.Context, flat Flat) models.Entry {
	return models.FromDocument(p.Import(ctx, flat))
}

// ToDomainMany decodes an import payload. raw may be a decoded JSON value
// ([]any, []map[string]any, []Flat) or JSON text ([]byte, string). Anything
// that is not a list yields an empty result; list elements that are not
// objects are skipped.
func (p *Pipeline) ToDomainMany(ctx context.Context, raw any) []models.Entry {
	entries := []models.Entry{}

	switch v := raw.(type) {
	case []byte:
		return p.ToDomainMany(ctx, p.decode(ctx, v))
	case json.RawMessage:
		return p.ToDomainMany(ctx, p.decode(ctx, v))
	case string:
		return p.ToDomainMany(ctx, p.decode(ctx, []byte(v)))
	case []Flat:
		for _, flat := range v {
			entries = append(entries, p.ToDomain(ctx, flat))
		}
	case []map[string]any:
		for _, m := range v {
			entries = append(entries, p.ToDomain(ctx, Flat(m)))
		}
	case []any:
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				p.log.Warn(ctx, "transform: skipping non-object element", "index", i)
				continue
			}
			entries = append(entries, p.ToDomain(ctx, Flat(m)))
		}
	default:
		p.log.Warn(ctx, "transform: import payload is not a list", "type", typeName(raw))
	}
	return entries
}

func (p *Pipeline) decode(ctx context.Context, b []byte) any {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		p.log.Warn(ctx, "transform: malformed JSON payload", "error", err)
		return nil
	}
	return v
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	b, _ := json.Marshal(v)
	if len(b) > 0 {
		switch b[0] {
		case '{':
			return "object"
		case '"':
			return "string"
		}
	}
	return "scalar"
}

// Columns returns the column order of the tuple form.
func Columns() []string {
	return append([]string(nil), models.Fields...)
}

// ToTuple flattens e into a row aligned with Columns. Fields outside the
// typed model are not part of the tuple form.
func (p *Pipeline) ToTuple(e models.Entry) []string {
	flat := p.ToExportable(e)
	row := make([]string, 0, len(models.Fields))
	for _, col := range models.Fields {
		row = append(row, cell(flat[col]))
	}
	return row
}

func cell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case int64:
		return strconv.FormatInt(c, 10)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
