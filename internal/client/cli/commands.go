package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
	"github.com/nathanhfoster/turbo-sub002/internal/client/services"
	"github.com/nathanhfoster/turbo-sub002/internal/common"
)

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

func parseID(args []string, format string) (int64, error) {
	if len(args) == 0 {
		return 0, usage(format)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// List prints the newest entries first, at most n when a count is given.
func (a *App) List(_ context.Context, args []string) error {
	list := a.entries.Entries()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return usage("list [n]")
		}
		if n < len(list) {
			list = list[:n]
		}
	}
	return writeList(a.out, list)
}

// New creates an entry. The title comes from the arguments or a prompt; the
// body is read until an empty line.
func (a *App) New(ctx context.Context, args []string) error {
	title := strings.Join(args, " ")
	if title == "" {
		var err error
		if title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
			return err
		}
	}
	body, err := GetMultiline(a.reader, "Body", a.out)
	if err != nil {
		return err
	}

	e, err := a.entries.Create(ctx, services.CreateOptions{Title: title, HTML: toHTML(body)})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created entry #%d\n", e.ID)
	return nil
}

func (a *App) Show(_ context.Context, args []string) error {
	id, err := parseID(args, "show <id>")
	if err != nil {
		return err
	}
	e, ok := a.entries.Get(id)
	if !ok {
		return fmt.Errorf("entry %d: %w", id, common.ErrorNotFound)
	}
	return writeEntry(a.out, e)
}

// Set changes one field. The value is everything after the field name and is
// converted the same way imported values are.
func (a *App) Set(ctx context.Context, args []string) error {
	const format = "set <id> <field> <value>"
	id, err := parseID(args, format)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return usage(format)
	}
	field := args[1]
	value := strings.Join(args[2:], " ")
	if field == models.FieldHTML {
		value = toHTML(value)
	}

	if _, err := a.entries.SetField(ctx, id, field, value); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s of entry #%d\n", field, id)
	return nil
}

// Edit replaces the body of an entry with text read until an empty line.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := parseID(args, "edit <id>")
	if err != nil {
		return err
	}
	if _, ok := a.entries.Get(id); !ok {
		return fmt.Errorf("entry %d: %w", id, common.ErrorNotFound)
	}
	body, err := GetMultiline(a.reader, "New body", a.out)
	if err != nil {
		return err
	}
	if _, err := a.entries.SetField(ctx, id, models.FieldHTML, toHTML(body)); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated entry #%d\n", id)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args, "delete <id>")
	if err != nil {
		return err
	}
	e, ok := a.entries.Get(id)
	if !ok {
		return fmt.Errorf("entry %d: %w", id, common.ErrorNotFound)
	}
	if a.interactive && !Confirm(a.reader, fmt.Sprintf("Delete #%d %q?", id, e.Title), a.out) {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	if err := a.entries.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted entry #%d\n", id)
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	term := strings.Join(args, " ")
	if term == "" {
		return usage("search <term>")
	}
	found, err := a.entries.Search(ctx, term)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(a.out, "No matches")
		return nil
	}
	return writeList(a.out, found)
}

func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("import <file>")
	}
	n, err := a.entries.ImportFile(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %d entries\n", n)
	return nil
}

// Export writes the entries to the export directory, or to dir when given.
// The format defaults to json.
func (a *App) Export(ctx context.Context, args []string) error {
	format, dir := services.FormatJSON, a.config.ExportDir
	if len(args) > 2 {
		return usage("export [json|csv|md] [dir]")
	}
	if len(args) > 0 {
		f, err := services.ParseFormat(args[0])
		if err != nil {
			return err
		}
		format = f
	}
	if len(args) > 1 {
		dir = args[1]
	}

	path, err := a.entries.Export(ctx, dir, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Exported to", path)
	return nil
}

func (a *App) Info(ctx context.Context, _ []string) error {
	st, err := a.entries.Stats(ctx)
	if err != nil {
		return err
	}
	return writeStats(a.out, a.config.DBPath, st)
}

func (a *App) Save(ctx context.Context, _ []string) error {
	if err := a.entries.Flush(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved")
	return nil
}

func (a *App) Reload(ctx context.Context, _ []string) error {
	if err := a.entries.Load(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Loaded %d entries\n", len(a.entries.Entries()))
	return nil
}
