package cache

import (
	"sync"

	"github.com/dmitrijs2005/feedsync/internal/client/models"
)

// Page is one fetched slice of the feed: the cursor it was fetched with and
// its items in feed order.
type Page struct {
	Cursor string
	Items  []*models.Entity
}

// Store is an in-memory, paginated, cursor-keyed cache of feed entities.
//
// The store is the single writer of its contents: components never reach into
// pages directly, they request operations by id. Every exported operation
// takes the lock once and completes as a single atomic step, so concurrent
// mutations from independent user actions cannot observe a half-applied
// state. No id ever appears twice across pages.
type Store struct {
	mu         sync.Mutex
	pages      []*Page
	nextCursor string
}

func New() *Store {
	return &Store{}
}

// locate returns the page and item index holding the given id, or (-1, -1).
// Callers must hold s.mu. Worst case scans every item of every page.
func (s *Store) locate(id string) (int, int) {
	for pi, page := range s.pages {
		for ii, item := range page.Items {
			if item.ID == id {
				return pi, ii
			}
		}
	}
	return -1, -1
}

// removeLocked deletes the item at the given position, dropping the page if
// it becomes empty. Callers must hold s.mu.
func (s *Store) removeLocked(pi, ii int) {
	page := s.pages[pi]
	page.Items = append(page.Items[:ii], page.Items[ii+1:]...)
	if len(page.Items) == 0 {
		s.pages = append(s.pages[:pi], s.pages[pi+1:]...)
	}
}

// insertAtHeadLocked prepends the entity to the first page, creating the
// page if the cache is empty. Callers must hold s.mu.
func (s *Store) insertAtHeadLocked(e *models.Entity) {
	if len(s.pages) == 0 {
		s.pages = []*Page{{Items: []*models.Entity{e}}}
		return
	}
	first := s.pages[0]
	first.Items = append([]*models.Entity{e}, first.Items...)
}

// InsertAtHead prepends the entity to the head of the first page. If an
// entity with the same id already exists anywhere in the cache the call is a
// no-op, so replaying an insert can never duplicate an item.
func (s *Store) InsertAtHead(e *models.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pi, _ := s.locate(e.ID); pi >= 0 {
		return
	}
	s.insertAtHeadLocked(e)
}

// PatchByID applies update to the single item with the given id, leaving all
// other items and pages untouched. Returns false (no-op) if the id is absent.
func (s *Store) PatchByID(id string, update func(*models.Entity)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pi, ii := s.locate(id)
	if pi < 0 {
		return false
	}
	update(s.pages[pi].Items[ii])
	return true
}

// RemoveByID removes the item with the given id from whichever page holds
// it. A page that becomes empty is dropped from the page sequence. Returns
// false (no-op) if the id is absent.
func (s *Store) RemoveByID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pi, ii := s.locate(id)
	if pi < 0 {
		return false
	}
	s.removeLocked(pi, ii)
	return true
}

// ReconcileOptimistic replaces the item previously inserted under tempID with
// the authoritative entity received from the server, as one logical step: no
// observer ever sees the cache missing both.
//
// The operation is idempotent: if tempID is already gone the final entity
// still ends up present exactly once, and if the final id is already cached
// the existing item is replaced in place rather than duplicated.
func (s *Store) ReconcileOptimistic(tempID string, final *models.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pi, ii := s.locate(tempID); pi >= 0 {
		s.removeLocked(pi, ii)
	}

	if pi, ii := s.locate(final.ID); pi >= 0 {
		s.pages[pi].Items[ii] = final
		return
	}
	s.insertAtHeadLocked(final)
}

// AppendPage records a freshly fetched page at the tail of the page sequence
// and remembers the cursor for the page after it. Items whose id is already
// cached are skipped, which keeps pagination safe when an optimistic insert
// or head-insert already delivered an entity. An append that is left with no
// new items still updates the next cursor but adds no empty page.
func (s *Store) AppendPage(cursor, next string, items []*models.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make([]*models.Entity, 0, len(items))
	for _, e := range items {
		if pi, _ := s.locate(e.ID); pi >= 0 {
			continue
		}
		fresh = append(fresh, e)
	}
	if len(fresh) > 0 {
		s.pages = append(s.pages, &Page{Cursor: cursor, Items: fresh})
	}
	s.nextCursor = next
}

// NextCursor returns the cursor to fetch the page after the last appended
// one; "" when the feed is exhausted or nothing was fetched yet.
func (s *Store) NextCursor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextCursor
}

// Contains reports whether an entity with the given id is cached.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pi, _ := s.locate(id)
	return pi >= 0
}

// Get returns a copy of the cached entity with the given id.
func (s *Store) Get(id string) (models.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pi, ii := s.locate(id)
	if pi < 0 {
		return models.Entity{}, false
	}
	return *s.pages[pi].Items[ii], true
}

// Len returns the total number of cached entities across all pages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.pages {
		n += len(p.Items)
	}
	return n
}

// Snapshot returns the cached entities in feed order, copied so callers can
// render or inspect them without holding up the store.
func (s *Store) Snapshot() []models.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Entity, 0)
	for _, p := range s.pages {
		for _, e := range p.Items {
			out = append(out, *e)
		}
	}
	return out
}

// Reset drops all pages and the next cursor. Used to invalidate the cache
// after a failed mutation, before refetching the affected region.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = nil
	s.nextCursor = ""
}
