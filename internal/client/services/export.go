package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
	"github.com/nathanhfoster/turbo-sub002/internal/client/repositories/metadata"
	"github.com/nathanhfoster/turbo-sub002/internal/client/transform"
	"github.com/nathanhfoster/turbo-sub002/internal/common"
	"github.com/nathanhfoster/turbo-sub002/internal/filex"
	"github.com/nathanhfoster/turbo-sub002/internal/timex"
)

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown}

// ExportPrefix is the file name prefix of every export.
const ExportPrefix = "diary-entries"

// ParseFormat accepts a format name; "markdown" is an alias of "md".
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if f == "markdown" {
		f = FormatMarkdown
	}
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("%w: %q", common.ErrorUnsupportedFormat, name)
	}
	return f, nil
}

// Export writes the working set (unsaved edits included) into a new
// timestamped file in dir and returns its path.
func (s *entryService) Export(ctx context.Context, dir string, format Format) (string, error) {
	list := s.Entries()
	slices.SortFunc(list, func(a, b models.Entry) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = s.exportJSON(list)
	case FormatCSV:
		data, err = s.exportCSV(list)
	case FormatMarkdown:
		data, err = s.exportMarkdown(list)
	default:
		return "", fmt.Errorf("%w: %q", common.ErrorUnsupportedFormat, format)
	}
	if err != nil {
		return "", fmt.Errorf("export %s: %w", format, err)
	}

	path, err := s.writeFile(dir, filex.TimestampedName(ExportPrefix, string(format), s.now()), data)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", format, err)
	}

	s.touch(ctx, metadata.KeyLastExportAt)
	s.log.Info(ctx, "entries: exported", "count", len(list), "format", format, "path", path)
	return path, nil
}

func (s *entryService) exportJSON(list []models.Entry) ([]byte, error) {
	flats := make([]transform.Flat, 0, len(list))
	for _, e := range list {
		flats = append(flats, s.pipeline.ToExportable(e))
	}
	return json.MarshalIndent(flats, "", "  ")
}

func (s *entryService) exportCSV(list []models.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(transform.Columns()); err != nil {
		return nil, err
	}
	for _, e := range list {
		if err := w.Write(s.pipeline.ToTuple(e)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (s *entryService) exportMarkdown(list []models.Entry) ([]byte, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	var buf bytes.Buffer
	for i, e := range list {
		if i > 0 {
			buf.WriteString("\n---\n\n")
		}
		title := e.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&buf, "# %s\n\n", title)
		fmt.Fprintf(&buf, "_%s_\n\n", timex.FormatDate(e.DateCreatedByAuthor))

		body, err := conv.ConvertString(e.HTML)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		if body = strings.TrimSpace(body); body != "" {
			buf.WriteString(body)
			buf.WriteString("\n")
		}
		if len(e.Tags) > 0 {
			names := make([]string, 0, len(e.Tags))
			for _, t := range e.Tags {
				names = append(names, "#"+t.Name)
			}
			fmt.Fprintf(&buf, "\n%s\n", strings.Join(names, " "))
		}
	}
	return buf.Bytes(), nil
}
