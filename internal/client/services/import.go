package services

import (
	"context"
	"fmt"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
	"github.com/nathanhfoster/turbo-sub002/internal/client/repositories/metadata"
)

// Import stores every entry object found in raw (a JSON document as bytes or
// string, or already decoded values) and reloads the working set.
//
// Entries are matched to the working set by client id: a known client id
// replaces that entry. An unknown one keeps its id unless that id already
// belongs to another entry, in which case it is inserted under a new id.
// Missing or repeated client ids are replaced by fresh ones. Payloads that
// hold no entries import nothing and are not an error.
func (s *entryService) Import(ctx context.Context, raw any) (int, error) {
	batch := s.pipeline.ToDomainMany(ctx, raw)
	if len(batch) == 0 {
		s.log.Info(ctx, "entries: nothing to import")
		return 0, nil
	}

	s.mu.Lock()
	byClient := make(map[string]int64, len(s.byID))
	for id, e := range s.byID {
		byClient[e.ClientID] = id
	}
	seen := make(map[string]struct{}, len(batch))
	taken := make(map[int64]struct{}, len(batch))
	for i := range batch {
		e := &batch[i]
		if _, dup := seen[e.ClientID]; e.ClientID == "" || dup {
			e.ClientID = models.NewClientID()
		}
		seen[e.ClientID] = struct{}{}

		if id, ok := byClient[e.ClientID]; ok {
			e.ID = id
		} else if _, used := s.byID[e.ID]; used {
			e.ID = 0
		}
		if _, dup := taken[e.ID]; dup {
			e.ID = 0
		}
		if e.ID != 0 {
			taken[e.ID] = struct{}{}
		}
		if e.HTML != "" {
			e.HTML = s.policy.Sanitize(e.HTML)
		}
	}
	s.mu.Unlock()

	s.writeMu.Lock()
	ids, err := s.repo.SaveMany(ctx, batch)
	if err != nil {
		s.writeMu.Unlock()
		s.log.Error(ctx, "entries: import failed", "count", len(batch), "error", err)
		return 0, fmt.Errorf("import entries: %w", err)
	}
	s.mu.Lock()
	for _, id := range ids {
		delete(s.dirty, id)
	}
	s.mu.Unlock()
	s.writeMu.Unlock()
	for _, id := range ids {
		s.sched.Cancel(key(id))
	}

	if err := s.Load(ctx); err != nil {
		return len(ids), err
	}
	s.touch(ctx, metadata.KeyLastImportAt)
	s.log.Info(ctx, "entries: imported", "count", len(ids))
	return len(ids), nil
}

// ImportFile reads a JSON export from path and imports it.
func (s *entryService) ImportFile(ctx context.Context, path string) (int, error) {
	raw, err := s.readJSON(path)
	if err != nil {
		return 0, fmt.Errorf("import entries: %w", err)
	}
	return s.Import(ctx, raw)
}
