package cli

import (
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
	"github.com/nathanhfoster/turbo-sub002/internal/client/services"
	"github.com/nathanhfoster/turbo-sub002/internal/timex"
)

const maxTitle = 48

func writeList(w io.Writer, list []models.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWRITTEN\tTITLE\tTAGS")
	for _, e := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.ID, day(e.DateCreatedByAuthor), clip(title(e), maxTitle), names(e.Tags))
	}
	return tw.Flush()
}

func writeEntry(w io.Writer, e models.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#%d\t%s\n", e.ID, title(e))
	fmt.Fprintf(tw, "client id\t%s\n", e.ClientID)
	fmt.Fprintf(tw, "written\t%s\n", stamp(e.DateCreatedByAuthor))
	fmt.Fprintf(tw, "created\t%s\n", stamp(e.DateCreated))
	fmt.Fprintf(tw, "updated\t%s\n", stamp(e.DateUpdated))
	if len(e.Tags) > 0 {
		fmt.Fprintf(tw, "tags\t%s\n", names(e.Tags))
	}
	if len(e.People) > 0 {
		fmt.Fprintf(tw, "people\t%s\n", names(e.People))
	}
	if e.Address != "" {
		fmt.Fprintf(tw, "address\t%s\n", e.Address)
	}
	if !math.IsNaN(e.Latitude) && !math.IsNaN(e.Longitude) && (e.Latitude != 0 || e.Longitude != 0) {
		fmt.Fprintf(tw, "location\t%g, %g\n", e.Latitude, e.Longitude)
	}
	fmt.Fprintf(tw, "rating\t%d\n", e.Rating)
	fmt.Fprintf(tw, "views\t%d\n", e.Views)
	fmt.Fprintf(tw, "public\t%t\n", e.IsPublic)
	if len(e.Files) > 0 {
		fmt.Fprintf(tw, "files\t%d\n", len(e.Files))
	}
	for _, k := range slices.Sorted(maps.Keys(e.Extra)) {
		fmt.Fprintf(tw, "%s\t%v (raw)\n", k, e.Extra[k])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if e.HTML != "" {
		_, err := fmt.Fprintf(w, "\n%s\n", e.HTML)
		return err
	}
	return nil
}

func writeStats(w io.Writer, path string, st services.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "database\t%s\n", path)
	fmt.Fprintf(tw, "schema version\t%d\n", st.SchemaVersion)
	fmt.Fprintf(tw, "entries\t%d\n", st.Entries)
	fmt.Fprintf(tw, "unsaved\t%d\n", st.Dirty)
	fmt.Fprintf(tw, "last import\t%s\n", ago(st.LastImportAt))
	fmt.Fprintf(tw, "last export\t%s\n", ago(st.LastExportAt))
	return tw.Flush()
}

func title(e models.Entry) string {
	if strings.TrimSpace(e.Title) == "" {
		return "(untitled)"
	}
	return e.Title
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func names(list []models.Named) string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.Name)
	}
	return strings.Join(out, ", ")
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateOnly)
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return timex.FormatDate(t) + " (" + humanize.Time(t) + ")"
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
