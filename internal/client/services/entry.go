package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
	"github.com/nathanhfoster/turbo-sub002/internal/client/repositories/entries"
	"github.com/nathanhfoster/turbo-sub002/internal/client/repositories/metadata"
	"github.com/nathanhfoster/turbo-sub002/internal/client/transform"
	"github.com/nathanhfoster/turbo-sub002/internal/common"
	"github.com/nathanhfoster/turbo-sub002/internal/debounce"
	"github.com/nathanhfoster/turbo-sub002/internal/filex"
	"github.com/nathanhfoster/turbo-sub002/internal/logging"
)

// EntryService is the in-memory working set of diary entries backed by the
// entries repository. Edits are applied to memory first and saved later;
// see SetField and Flush.
type EntryService interface {
	// Load replaces the working set with the stored entries.
	Load(ctx context.Context) error
	// Entries returns the working set, newest author date first.
	Entries() []models.Entry
	// Get returns one entry of the working set.
	Get(id int64) (models.Entry, bool)

	Create(ctx context.Context, opts CreateOptions) (models.Entry, error)
	SetField(ctx context.Context, id int64, field string, value any) (models.Entry, error)
	Save(ctx context.Context, e models.Entry) (models.Entry, error)
	Flush(ctx context.Context) error
	Delete(ctx context.Context, id int64) error

	Import(ctx context.Context, raw any) (int, error)
	ImportFile(ctx context.Context, path string) (int, error)
	Export(ctx context.Context, dir string, format Format) (string, error)

	Search(ctx context.Context, term string) ([]models.Entry, error)
	Stats(ctx context.Context) (Stats, error)

	// Close flushes pending saves and stops the scheduler.
	Close(ctx context.Context) error
}

// Scheduler delays a save per key. *debounce.Debouncer implements it.
type Scheduler interface {
	Do(key string, fn func())
	Cancel(key string) bool
	Stop()
}

// Versioner reports the on-disk schema version. *store.Gateway implements it.
type Versioner interface {
	Version(ctx context.Context) (int64, error)
}

// CreateOptions customise a new entry.
type CreateOptions struct {
	Title      string
	HTML       string
	AuthorDate time.Time
}

// Stats summarises the working set and store bookkeeping.
type Stats struct {
	Entries       int
	Dirty         int
	SchemaVersion int64
	LastImportAt  time.Time
	LastExportAt  time.Time
}

type entryService struct {
	repo     entries.Repository
	meta     metadata.Repository
	pipeline *transform.Pipeline
	sched    Scheduler
	version  Versioner
	log      logging.Logger
	now      func() time.Time
	policy   *bluemonday.Policy

	readJSON  func(path string) (any, error)
	writeFile func(dir, name string, data []byte) (string, error)

	// writeMu orders writes of existing entries: a save that already read
	// an entry finishes before that entry can be deleted or replaced.
	writeMu sync.Mutex

	mu    sync.Mutex
	byID  map[int64]models.Entry
	dirty map[int64]uint64
	rev   map[int64]uint64
}

// Option customises NewEntryService.
type Option func(*entryService)

// WithScheduler replaces the default debouncer.
func WithScheduler(s Scheduler) Option {
	return func(svc *entryService) { svc.sched = s }
}

// WithVersioner enables SchemaVersion in Stats.
func WithVersioner(v Versioner) Option {
	return func(svc *entryService) { svc.version = v }
}

func WithLogger(l logging.Logger) Option {
	return func(svc *entryService) { svc.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(svc *entryService) { svc.now = now }
}

func WithPipeline(p *transform.Pipeline) Option {
	return func(svc *entryService) { svc.pipeline = p }
}

// WithFileIO replaces the file helpers used by ImportFile and Export.
func WithFileIO(read func(string) (any, error), write func(dir, name string, data []byte) (string, error)) Option {
	return func(svc *entryService) {
		svc.readJSON = read
		svc.writeFile = write
	}
}

// NewEntryService wires the service. Defaults: a 400ms debouncer, a
// discarding logger, time.Now and the filex helpers.
func NewEntryService(repo entries.Repository, meta metadata.Repository, opts ...Option) EntryService {
	s := &entryService{
		repo:      repo,
		meta:      meta,
		log:       logging.Discard(),
		now:       time.Now,
		policy:    bluemonday.UGCPolicy(),
		readJSON:  filex.ReadJSON,
		writeFile: filex.WriteFile,
		byID:      map[int64]models.Entry{},
		dirty:     map[int64]uint64{},
		rev:       map[int64]uint64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = transform.New(s.log)
	}
	if s.sched == nil {
		s.sched = debounce.New(400 * time.Millisecond)
	}
	return s
}

func (s *entryService) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// closeTimeout bounds the final flush in Close.
const closeTimeout = 10 * time.Second

func key(id int64) string { return strconv.FormatInt(id, 10) }

func (s *entryService) Load(ctx context.Context) error {
	list, err := s.repo.GetAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[int64]models.Entry, len(list))
	for _, e := range list {
		byID[e.ID] = e
	}
	// unsaved edits are newer than what was read, and survive a failed read
	for id := range s.dirty {
		if e, ok := s.byID[id]; ok {
			byID[id] = e
		}
	}
	s.byID = byID

	if err != nil {
		s.log.Error(ctx, "entries: load failed", "error", err, "unsaved", len(s.dirty))
		return fmt.Errorf("load entries: %w", err)
	}
	s.log.Debug(ctx, "entries: loaded", "count", len(byID))
	return nil
}

func (s *entryService) Entries() []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Entry, 0, len(s.byID))
	for _, e := range s.byID {
		out = append(out, e.Clone())
	}
	models.SortByAuthorDate(out)
	return out
}

func (s *entryService) Get(id int64) (models.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return models.Entry{}, false
	}
	return e.Clone(), true
}

func (s *entryService) Create(ctx context.Context, opts CreateOptions) (models.Entry, error) {
	e := models.NewEntry(s.stamp())
	e.Title = opts.Title
	if opts.HTML != "" {
		e.HTML = s.policy.Sanitize(opts.HTML)
	}
	if !opts.AuthorDate.IsZero() {
		e.DateCreatedByAuthor = opts.AuthorDate.UTC().Truncate(time.Millisecond)
	}
	return s.Save(ctx, e)
}

// SetField converts value to the field's typed form (strings are parsed the
// way imports are), applies it, refreshes date_updated and schedules a save.
// The returned entry is the new in-memory state.
func (s *entryService) SetField(ctx context.Context, id int64, field string, value any) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[id]
	if !ok {
		return models.Entry{}, fmt.Errorf("entry %d: %w", id, common.ErrorNotFound)
	}

	next := cur.Clone()
	if field != models.FieldDateUpdated {
		next.DateUpdated = s.stamp()
	}
	if err := next.Set(field, transform.Field(field, value, false)); err != nil {
		return models.Entry{}, err
	}

	s.byID[id] = next
	s.markDirty(id)
	s.sched.Do(key(id), func() {
		if err := s.saveDirty(context.Background(), id); err != nil {
			s.log.Warn(context.Background(), "entries: debounced save failed", "id", id, "error", err)
		}
	})
	return next.Clone(), nil
}

func (s *entryService) markDirty(id int64) {
	s.rev[id]++
	s.dirty[id] = s.rev[id]
}

// saveDirty persists the current state of id if it has unsaved edits. The
// entry stays dirty when the save fails or when it was edited meanwhile. A
// dirty id with no entry left in memory is dropped and reported.
func (s *entryService) saveDirty(ctx context.Context, id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	rev, dirty := s.dirty[id]
	e, ok := s.byID[id]
	if dirty && !ok {
		delete(s.dirty, id)
	}
	s.mu.Unlock()
	if !dirty {
		return nil
	}
	if !ok {
		return fmt.Errorf("save entry %d: %w", id, common.ErrorNotFound)
	}

	if _, err := s.repo.Save(ctx, e); err != nil {
		return fmt.Errorf("save entry %d: %w", id, err)
	}

	s.mu.Lock()
	if s.dirty[id] == rev {
		delete(s.dirty, id)
	}
	s.mu.Unlock()
	return nil
}

// Save persists e now. The in-memory state is updated before the write and
// is kept if the write fails; the entry then stays dirty and the next Flush
// retries it. Entries without an id are only cached once stored.
func (s *entryService) Save(ctx context.Context, e models.Entry) (models.Entry, error) {
	e = e.Clone()
	if e.ID == 0 {
		id, err := s.repo.Save(ctx, e)
		if err != nil {
			s.log.Error(ctx, "entries: save failed", "error", err)
			return models.Entry{}, fmt.Errorf("save entry: %w", err)
		}
		e.ID = id
		s.mu.Lock()
		s.byID[id] = e
		s.mu.Unlock()
		return e.Clone(), nil
	}

	s.mu.Lock()
	s.byID[e.ID] = e
	s.markDirty(e.ID)
	s.mu.Unlock()
	s.sched.Cancel(key(e.ID))

	if err := s.saveDirty(ctx, e.ID); err != nil {
		s.log.Error(ctx, "entries: save failed", "id", e.ID, "error", err)
		return e.Clone(), err
	}
	return e.Clone(), nil
}

// Flush saves every dirty entry now.
func (s *entryService) Flush(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]int64, 0, len(s.dirty))
	for id := range s.dirty {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var errs []error
	for _, id := range ids {
		s.sched.Cancel(key(id))
		if err := s.saveDirty(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *entryService) Delete(ctx context.Context, id int64) error {
	s.sched.Cancel(key(id))

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}

	s.mu.Lock()
	delete(s.byID, id)
	delete(s.dirty, id)
	delete(s.rev, id)
	s.mu.Unlock()
	return nil
}

func (s *entryService) Search(ctx context.Context, term string) ([]models.Entry, error) {
	found, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}

	s.mu.Lock()
	for i, e := range found {
		if cur, ok := s.byID[e.ID]; ok {
			found[i] = cur.Clone()
		}
	}
	s.mu.Unlock()

	models.SortByAuthorDate(found)
	return found, nil
}

func (s *entryService) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	st := Stats{Entries: len(s.byID), Dirty: len(s.dirty)}
	s.mu.Unlock()

	if s.version != nil {
		v, err := s.version.Version(ctx)
		if err != nil {
			return st, fmt.Errorf("schema version: %w", err)
		}
		st.SchemaVersion = v
	}
	if s.meta != nil {
		var err error
		if st.LastImportAt, _, err = s.meta.GetTime(ctx, metadata.KeyLastImportAt); err != nil {
			return st, err
		}
		if st.LastExportAt, _, err = s.meta.GetTime(ctx, metadata.KeyLastExportAt); err != nil {
			return st, err
		}
	}
	return st, nil
}

// Close flushes with a context that ignores cancellation of ctx, so edits
// still reach the store when the process is shutting down on a signal.
func (s *entryService) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	err := s.Flush(ctx)
	s.sched.Stop()
	return err
}

// touch records a bookkeeping timestamp; failures are only logged.
func (s *entryService) touch(ctx context.Context, key string) {
	if s.meta == nil {
		return
	}
	if err := s.meta.SetTime(ctx, key, s.stamp()); err != nil {
		s.log.Warn(ctx, "entries: metadata update failed", "key", key, "error", err)
	}
}
