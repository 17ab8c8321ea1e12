// Package remote defines the engine's injectable remote-sync capability and
// an S3-backed implementation of it. The engine never depends on a specific
// transport — it only ever calls through the Store interface.
package remote

import "context"

// Store is the collaborator the engine can optionally sync documents
// through: push a local document out, pull one in by path. Sync itself
// (when push/pull fire) is a caller-driven concern, not something this
// package or the engine schedules on its own.
type Store interface {
	// Push uploads path's encoded document, overwriting any existing copy.
	Push(ctx context.Context, path string, data []byte) error
	// Pull downloads path's document. found is false when the remote has
	// no object at path — a NotFound condition, not an error.
	Pull(ctx context.Context, path string) (data []byte, found bool, err error)
}
