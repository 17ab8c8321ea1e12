package engine

import (
	"log"

	"github.com/chaturanga836/docstore/internal/common"
	"github.com/chaturanga836/docstore/internal/compaction"
)

// Compact merges the directory's SSTs into one via internal/compaction and
// reloads the engine's reader set to match the new file on disk.
func (e *Engine) Compact() (compaction.Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var stats compaction.Stats
	err := e.guard("compact", func() error {
		s, err := compaction.Compact(e.storage, e.dir)
		if err != nil {
			return common.Wrap(common.ErrIO, "compact", e.dir, err)
		}
		stats = s

		handles, err := loadSSTHandles(e.storage, e.dir)
		if err != nil {
			return common.Wrap(common.ErrIO, "compact", e.dir, err)
		}
		e.ssts = handles
		log.Printf("engine: compacted %d files into %d, dropped %d tombstones",
			s.FilesBefore, s.FilesAfter, s.TombstonesRemoved)
		return nil
	})
	return stats, err
}
