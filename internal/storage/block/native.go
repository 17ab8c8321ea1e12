package block

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// NativeFS is the Storage backend rooted at a real directory on disk.
type NativeFS struct {
	root string
}

// NewNativeFS creates a NativeFS rooted at root, creating it if absent.
func NewNativeFS(root string) (*NativeFS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, wrapOSErr("mkdir", root, err)
	}
	return &NativeFS{root: root}, nil
}

func (n *NativeFS) full(path string) string {
	return filepath.Join(n.root, filepath.Clean("/"+path))
}

func (n *NativeFS) Open(path string) (File, error) {
	f, err := os.OpenFile(n.full(path), os.O_RDWR, 0o644)
	if err != nil {
		return nil, wrapOSErr("open", path, err)
	}
	return f, nil
}

func (n *NativeFS) Create(path string) (File, error) {
	full := n.full(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, wrapOSErr("mkdir", path, err)
	}
	f, err := os.OpenFile(full, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, wrapOSErr("create", path, err)
	}
	return f, nil
}

func (n *NativeFS) Remove(path string) error {
	if err := os.Remove(n.full(path)); err != nil && !os.IsNotExist(err) {
		return wrapOSErr("remove", path, err)
	}
	return nil
}

func (n *NativeFS) Rename(oldPath, newPath string) error {
	if err := os.MkdirAll(filepath.Dir(n.full(newPath)), 0o755); err != nil {
		return wrapOSErr("mkdir", newPath, err)
	}
	if err := os.Rename(n.full(oldPath), n.full(newPath)); err != nil {
		return wrapOSErr("rename", oldPath, err)
	}
	return nil
}

func (n *NativeFS) Exists(path string) (bool, error) {
	_, err := os.Stat(n.full(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, wrapOSErr("stat", path, err)
}

func (n *NativeFS) MkdirAll(path string) error {
	if err := os.MkdirAll(n.full(path), 0o755); err != nil {
		return wrapOSErr("mkdir", path, err)
	}
	return nil
}

func (n *NativeFS) ListDir(path string) ([]FileInfo, error) {
	entries, err := os.ReadDir(n.full(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, wrapOSErr("readdir", path, err)
	}
	out := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, FileInfo{
			Path:    filepath.ToSlash(filepath.Join(path, entry.Name())),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	return out, nil
}

// WriteAtomic writes data to path via a temp-file-then-rename so concurrent
// readers never see a partial file. Satisfies the optional AtomicWriter
// capability.
func (n *NativeFS) WriteAtomic(path string, data []byte) error {
	full := n.full(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return wrapOSErr("mkdir", path, err)
	}
	if err := atomic.WriteFile(full, bytes.NewReader(data)); err != nil {
		return wrapOSErr("write-atomic", path, err)
	}
	return nil
}

func (n *NativeFS) Lock(path string) (Lock, error) {
	return n.lock(path, true)
}

func (n *NativeFS) TryLock(path string) (Lock, error) {
	return n.lock(path, false)
}

func (n *NativeFS) lock(path string, blocking bool) (Lock, error) {
	full := n.full(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, wrapOSErr("mkdir", path, err)
	}
	f, err := os.OpenFile(full, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, wrapOSErr("open", path, err)
	}

	flags := unix.LOCK_EX
	if !blocking {
		flags |= unix.LOCK_NB
	}
	for {
		err := unix.Flock(int(f.Fd()), flags)
		if err == nil {
			break
		}
		if errors.Is(err, unix.EINTR) {
			continue
		}
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, &Error{Op: "lock", Path: path, Kind: KindWouldBlock, Err: err}
		}
		return nil, &Error{Op: "lock", Path: path, Kind: KindOther, Err: err}
	}
	return &nativeLock{file: f}, nil
}

type nativeLock struct {
	file *os.File
}

func (l *nativeLock) Close() error {
	fd := int(l.file.Fd())
	_ = unix.Flock(fd, unix.LOCK_UN)
	return l.file.Close()
}

func wrapOSErr(op, path string, err error) error {
	kind := KindOther
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermissionDenied
	case errors.Is(err, fs.ErrInvalid):
		kind = KindInvalidData
	}
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}
