// Package service orchestrates domain operations over the store, the core
// invariant engines, the search index, the blob store, and the SSE manager.
package service

import (
	"github.com/mughouse/mughouse-server/internal/errors"
	"github.com/mughouse/mughouse-server/internal/search"
	"github.com/mughouse/mughouse-server/internal/store"
)

// EventEmitter receives domain events for broadcast. The SSE manager
// implements it; tests use Noop.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter discards all events.
type NoopEmitter struct{}

// Emit discards the event.
func (NoopEmitter) Emit(any) {}

// Indexer is the slice of the search index the catalog services need to keep
// documents in sync. Tests use Noop.
type Indexer interface {
	IndexDocument(doc *search.SearchDocument) error
	DeleteDocument(id string) error
}

// NoopIndexer ignores all index updates.
type NoopIndexer struct{}

// IndexDocument ignores the document.
func (NoopIndexer) IndexDocument(*search.SearchDocument) error { return nil }

// DeleteDocument ignores the deletion.
func (NoopIndexer) DeleteDocument(string) error { return nil }

// notFound translates a store-layer miss into a domain not-found error so
// callers above the service boundary only ever see internal/errors values.
func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return errors.NotFound(msg)
	}
	return err
}
