package engine

import (
	"context"

	"github.com/chaturanga836/docstore/internal/common"
	"github.com/chaturanga836/docstore/internal/remote"
)

// SyncPush reads key's current value and pushes it to store. It is a
// caller-driven operation — the engine never schedules a push on its own —
// so a single-key push composes with whatever cadence or trigger the
// binding wants (a cron job, a CLI command, a post-write hook).
func (e *Engine) SyncPush(ctx context.Context, key string, store remote.Store) error {
	value, err := e.Get(key)
	if err != nil {
		return err
	}
	if err := store.Push(ctx, key, value); err != nil {
		return common.Wrap(common.ErrIO, "sync_push", key, err)
	}
	return nil
}

// SyncPull fetches key from store and, if present, applies it locally via
// Put. A remote miss is reported through the return value, not an error,
// matching the NotFound-during-sync-pull convention the error taxonomy
// defines for this path.
func (e *Engine) SyncPull(ctx context.Context, key string, store remote.Store) (found bool, err error) {
	data, found, err := store.Pull(ctx, key)
	if err != nil {
		return false, common.Wrap(common.ErrIO, "sync_pull", key, err)
	}
	if !found {
		return false, nil
	}
	if err := e.Put(key, data); err != nil {
		return false, err
	}
	return true, nil
}
