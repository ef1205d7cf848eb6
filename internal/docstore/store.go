// Package docstore defines the contract for the remote document store. The
// core treats it as an already-authenticated, opaque collection/document API
// with live-query semantics: every change to a query's match set delivers the
// full current snapshot.
package docstore

import "context"

// Document is one raw stored record. Data is the serialized document body;
// decoding to a typed record happens (and may fail per document) upstream.
type Document struct {
	ID   string
	Data []byte
}

// Snapshot is the full current set of documents matching a query at a point
// in time. Order is whatever the store emits; consumers must not rely on it.
type Snapshot struct {
	Docs []Document
}

// Filter narrows a query to documents whose field equals the given value.
type Filter struct {
	Field string
	Value any
}

// Eq is a convenience constructor for an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// LiveHandle is one live query. Close synchronously detaches the
// subscription: after it returns, no further snapshots or errors are
// delivered on the channels.
type LiveHandle interface {
	// Snapshots delivers the initial match set and then the full current
	// set on every change, in store emission order.
	Snapshots() <-chan Snapshot

	// Err delivers transport/query failures. An error does not close the
	// handle; the subscription keeps trying until Close.
	Err() <-chan error

	Close()
}

// Store is the document store the operational core runs against.
type Store interface {
	Query(ctx context.Context, collection string, filters []Filter) ([]Document, error)
	Live(ctx context.Context, collection string, filters []Filter) (LiveHandle, error)
	Write(ctx context.Context, collection, id string, record any) error
	Delete(ctx context.Context, collection, id string) error
}
