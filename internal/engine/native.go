package engine

import (
	"github.com/chaturanga836/docstore/internal/common"
	"github.com/chaturanga836/docstore/internal/storage/block"
)

// OpenNative opens an engine rooted at a real filesystem directory,
// creating it if absent. This is the constructor the CLI and HTTP bindings
// use; tests construct Open directly against a MemFS.
func OpenNative(dir string, opts Options) (*Engine, error) {
	storage, err := block.NewNativeFS(dir)
	if err != nil {
		return nil, common.Wrap(common.ErrIO, "open", dir, err)
	}
	return Open(storage, "", opts)
}
