package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
	"github.com/nathanhfoster/turbo-sub002/internal/timex"
)

// Identity returns value unchanged.
func Identity(value any, _ bool) any {
	return value
}

// IntTransform stringifies integers on export. On import it parses the value
// and falls back to the original input when it is not a number.
func IntTransform(value any, exporting bool) any {
	if exporting {
		switch v := value.(type) {
		case nil:
			return ""
		case string:
			return v
		case int64:
			return strconv.FormatInt(v, 10)
		case int:
			return strconv.Itoa(v)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return fmt.Sprint(value)
	}

	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return int64(v)
		}
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
	}
	return value
}

// FloatTransform stringifies floats on export (NaN becomes ""). On import it
// parses to float64; anything unparsable, including "", yields NaN.
func FloatTransform(value any, exporting bool) any {
	if exporting {
		switch v := value.(type) {
		case nil:
			return ""
		case string:
			return v
		case float64:
			if math.IsNaN(v) {
				return ""
			}
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int64:
			return strconv.FormatInt(v, 10)
		case int:
			return strconv.Itoa(v)
		}
		return fmt.Sprint(value)
	}

	switch v := value.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return math.NaN()
}

// StringToBoolTransform maps true and "true" to "true" (export) or true
// (import); every other value maps to "false" or false.
func StringToBoolTransform(value any, exporting bool) any {
	isTrue := value == true || value == "true"
	if exporting {
		if isTrue {
			return "true"
		}
		return "false"
	}
	return isTrue
}

// EntryTagOrPeopleTransform joins list names with "," on export and splits a
// comma-joined string back into Named values on import, dropping empty
// segments.
func EntryTagOrPeopleTransform(value any, exporting bool) any {
	if exporting {
		if s, ok := value.(string); ok {
			return s
		}
		return strings.Join(listNames(value), ",")
	}

	if s, ok := value.(string); ok {
		out := []models.Named{}
		for _, part := range strings.Split(s, ",") {
			if part != "" {
				out = append(out, models.Named{Name: part})
			}
		}
		return out
	}
	return models.Names(listNames(value)...)
}

func listNames(value any) []string {
	var names []string
	switch v := value.(type) {
	case []models.Named:
		for _, n := range v {
			names = append(names, n.Name)
		}
	case []string:
		names = append(names, v...)
	case []any:
		for _, item := range v {
			switch it := item.(type) {
			case string:
				names = append(names, it)
			case map[string]any:
				if s, ok := it["name"].(string); ok {
					names = append(names, s)
				}
			case models.Named:
				names = append(names, it.Name)
			}
		}
	}
	return names
}

// EntryFilesTransform JSON-encodes the file collection on export. On import
// it decodes the JSON string, reviving date-shaped values at any depth. A
// string that is not valid JSON is returned unchanged.
func EntryFilesTransform(value any, exporting bool) any {
	if exporting {
		switch v := value.(type) {
		case string:
			return v
		case nil:
			return "[]"
		}
		b, err := json.Marshal(value)
		if err != nil {
			return value
		}
		return string(b)
	}

	switch v := value.(type) {
	case []models.File:
		return v
	case nil:
		return []models.File{}
	case string:
		if strings.TrimSpace(v) == "" {
			return []models.File{}
		}
		files := []models.File{}
		if err := json.Unmarshal([]byte(v), &files); err != nil {
			return value
		}
		return files
	case []any:
		files := make([]models.File, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				files = append(files, models.FileFromMap(m))
			}
		}
		return files
	}
	return value
}

// DateTransform normalizes date-like values. Export yields the canonical
// string; import yields time.Time. Values that cannot be read as a date are
// passed through unchanged in both directions.
func DateTransform(value any, exporting bool) any {
	if exporting {
		if s, ok := timex.NormalizeDate(value); ok {
			return s
		}
		return value
	}
	if t, ok := value.(time.Time); ok {
		return t
	}
	if t, ok := timex.ToTime(value); ok {
		return t
	}
	return value
}
