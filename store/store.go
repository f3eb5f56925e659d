// Package store wraps the shared per-room document every client in a match
// reads and writes. It exposes exactly two operations: subscribe to a room's
// document and apply a partial multi-field update. Concurrent writers on
// disjoint field paths both succeed; writers racing on the same path resolve
// by last-write-wins with no conflict detection.
package store

import (
	"context"

	"github.com/mapleleafu/blastarena/blastarena-backend/models"
)

// Store is the replicated document boundary the simulation core is built
// against. Implementations must normalize absent fields to empty collections
// before invoking subscription callbacks.
type Store interface {
	// Subscribe registers fn to receive the room's full world snapshot on
	// every change, including one initial delivery of the current state.
	// The returned func cancels the subscription.
	Subscribe(ctx context.Context, roomID string, fn func(models.GameState)) (func(), error)

	// Update atomically applies a set of field-path -> value assignments to
	// the room document, creating it if absent. Paths follow the document
	// shape: "players.<id>", "players.<id>.<field>", "bullets".
	Update(ctx context.Context, roomID string, fields map[string]any) error
}

// ArrayUnion marks an update value as an append to an array field rather
// than a replacement.
type ArrayUnion struct {
	Values []any
}

// Append wraps values for an array-append update.
func Append(values ...any) ArrayUnion {
	return ArrayUnion{Values: values}
}
