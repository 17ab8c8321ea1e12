// Package compaction merges a directory's SST files into one, dropping
// tombstones that shadow nothing newer.
package compaction

import (
	"path"
	"sort"

	"github.com/chaturanga836/docstore/internal/sst"
	"github.com/chaturanga836/docstore/internal/storage/block"
)

// Stats summarizes one compaction run.
type Stats struct {
	FilesBefore       int
	FilesAfter        int
	EntriesBefore     int
	EntriesAfter      int
	TombstonesRemoved int
	SizeBefore        int64
	SizeAfter         int64
}

type mergedEntry struct {
	value     []byte
	tombstone bool
}

// orderedEntries adapts a sorted merge result to sst.Write's snapshot
// interface (ascending-key Each iteration).
type orderedEntries struct {
	keys    []string
	entries map[string]mergedEntry
}

func (o *orderedEntries) Each(fn func(key string, value []byte, tombstone bool) bool) {
	for _, k := range o.keys {
		e := o.entries[k]
		if !fn(k, e.value, e.tombstone) {
			return
		}
	}
}

// Compact merges every ".sst" file directly under dir into a single new SST,
// applying last-write-wins across oldest-to-newest inputs and dropping any
// key whose final state is a tombstone. The merged file is written before
// the inputs are removed, so a crash mid-compaction leaves the old inputs
// intact and the directory still consistent.
func Compact(storage block.Storage, dir string) (Stats, error) {
	infos, err := storage.ListDir(dir)
	if err != nil {
		return Stats{}, err
	}

	var inputs []block.FileInfo
	for _, info := range infos {
		if path.Ext(info.Path) == ".sst" {
			inputs = append(inputs, info)
		}
	}
	sort.Slice(inputs, func(i, j int) bool {
		return inputs[i].ModTime.Before(inputs[j].ModTime)
	})

	stats := Stats{FilesBefore: len(inputs)}
	if len(inputs) == 0 {
		return stats, nil
	}

	merged := make(map[string]mergedEntry)
	for _, info := range inputs {
		stats.SizeBefore += info.Size
		r := sst.Open(storage, info.Path)
		if err := r.ValidateIntegrity(); err != nil {
			continue
		}
		err := r.Iterate(func(key string, value []byte, tombstone bool) bool {
			stats.EntriesBefore++
			merged[key] = mergedEntry{value: append([]byte(nil), value...), tombstone: tombstone}
			return true
		})
		if err != nil {
			return Stats{}, err
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	live := &orderedEntries{entries: merged}
	for _, k := range keys {
		if merged[k].tombstone {
			stats.TombstonesRemoved++
			continue
		}
		live.keys = append(live.keys, k)
	}

	newPath := path.Join(dir, sst.NewName())
	entries, err := sst.Write(storage, newPath, live)
	if err != nil {
		return Stats{}, err
	}
	stats.EntriesAfter = entries
	stats.FilesAfter = 1

	if mergedInfos, err := storage.ListDir(dir); err == nil {
		for _, info := range mergedInfos {
			if info.Path == newPath {
				stats.SizeAfter = info.Size
			}
		}
	}

	for _, info := range inputs {
		if err := storage.Remove(info.Path); err != nil {
			return stats, err
		}
	}

	return stats, nil
}
