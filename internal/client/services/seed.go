package services

import (
	"time"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
	"github.com/nathanhfoster/turbo-sub002/internal/client/store"
	"github.com/nathanhfoster/turbo-sub002/internal/client/transform"
)

const (
	WelcomeTitle = "Welcome to your diary"
	WelcomeHTML  = "<p>This is your first entry. Edit it, or create a new one with <code>new</code>.</p>"
)

// WelcomeRecord is the stored form of the entry written into a brand new
// store. Pass it to store.WithSeed.
func WelcomeRecord(p *transform.Pipeline, now time.Time) store.Record {
	e := models.NewEntry(now)
	e.Title = WelcomeTitle
	e.HTML = WelcomeHTML
	e.Tags = models.Names("welcome")
	return store.Record(p.ToExportable(e))
}
