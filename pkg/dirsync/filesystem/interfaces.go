package filesystem

import (
	"io"
	"io/fs"
	"time"
)

// Access probe bits, matching access(2).
const (
	AccessRead  uint32 = 0x4
	AccessWrite uint32 = 0x2
	AccessExec  uint32 = 0x1
)

// ReadFS defines the read-only operations the sync engine needs.
// All names are slash-separated paths relative to the filesystem root;
// "." addresses the root itself.
type ReadFS interface {
	Open(name string) (fs.File, error)
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Readlink(name string) (string, error)
	Access(name string, mode uint32) error
}

// WriteFS defines the mutating operations on a file system.
type WriteFS interface {
	OpenFile(name string, flag int, perm fs.FileMode) (io.WriteCloser, error)
	Mkdir(name string, perm fs.FileMode) error
	Remove(name string) error
	Symlink(target, name string) error
	Chmod(name string, mode fs.FileMode) error
	Chown(name string, uid, gid int) error
	Chtimes(name string, atime, mtime time.Time) error
	Lchtimes(name string, atime, mtime time.Time) error
}

// FullFileSystem combines read and write operations.
type FullFileSystem interface {
	ReadFS
	WriteFS
}
