// Package cache provides the client-side feed cache.
//
// # Overview
//
// The package defines Store, an in-memory, paginated cache of feed entities
// keyed by the cursors used to fetch each page. Higher layers (the mutation
// engine and the submission orchestrator) treat it as the single source of
// truth for what the user currently sees.
//
// # Invariants
//
//   - No entity id appears twice across all pages.
//   - New entities always enter at the head of the first page.
//   - Removing the last item of a page drops the page itself; the cache never
//     holds a zero-length page.
//   - Every operation targets a single entity by id and is applied atomically;
//     an absent id makes the operation a no-op instead of an error.
//
// # Concurrency
//
// A single Store instance is shared by all concurrently running mutations.
// All operations serialize on an internal mutex and never span an await-like
// boundary, which is what prevents lost updates between independent user
// actions.
//
// Key Types
//
//   - type Store — the cache; constructed with New and passed by reference
//   - type Page  — one fetched slice of the feed
//
// Typical Usage
//
//	store := cache.New()
//	store.AppendPage("", page.NextCursor, page.Items)
//	store.InsertAtHead(optimistic)
//	store.ReconcileOptimistic(optimistic.ID, confirmed)
//	_ = store.RemoveByID(id)
package cache
