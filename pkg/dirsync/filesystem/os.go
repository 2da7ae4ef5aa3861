package filesystem

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// OSFileSystem implements FullFileSystem against the operating system,
// rooted at a directory.
type OSFileSystem struct {
	root string
}

// NewOSFileSystem creates a new OS-based filesystem rooted at the given path.
func NewOSFileSystem(root string) *OSFileSystem {
	return &OSFileSystem{root: root}
}

// Root returns the directory this filesystem is rooted at.
func (osfs *OSFileSystem) Root() string {
	return osfs.root
}

func (osfs *OSFileSystem) join(op, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return filepath.Join(osfs.root, filepath.FromSlash(name)), nil
}

// Open implements ReadFS.
func (osfs *OSFileSystem) Open(name string) (fs.File, error) {
	fullPath, err := osfs.join("open", name)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// Stat implements ReadFS.
func (osfs *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	fullPath, err := osfs.join("stat", name)
	if err != nil {
		return nil, err
	}
	return os.Stat(fullPath)
}

// Lstat implements ReadFS. It does not follow symlinks.
func (osfs *OSFileSystem) Lstat(name string) (fs.FileInfo, error) {
	fullPath, err := osfs.join("lstat", name)
	if err != nil {
		return nil, err
	}
	return os.Lstat(fullPath)
}

// ReadDir implements ReadFS.
func (osfs *OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	fullPath, err := osfs.join("readdir", name)
	if err != nil {
		return nil, err
	}
	return os.ReadDir(fullPath)
}

// Readlink implements ReadFS. The link target is returned verbatim, so
// that mirrored links carry the same text as their originals.
func (osfs *OSFileSystem) Readlink(name string) (string, error) {
	fullPath, err := osfs.join("readlink", name)
	if err != nil {
		return "", err
	}
	return os.Readlink(fullPath)
}

// Access implements ReadFS using access(2).
func (osfs *OSFileSystem) Access(name string, mode uint32) error {
	fullPath, err := osfs.join("access", name)
	if err != nil {
		return err
	}
	if err := unix.Access(fullPath, mode); err != nil {
		return &fs.PathError{Op: "access", Path: name, Err: err}
	}
	return nil
}

// OpenFile implements WriteFS.
func (osfs *OSFileSystem) OpenFile(name string, flag int, perm fs.FileMode) (io.WriteCloser, error) {
	fullPath, err := osfs.join("openfile", name)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(fullPath, flag, perm)
}

// Mkdir implements WriteFS.
func (osfs *OSFileSystem) Mkdir(name string, perm fs.FileMode) error {
	fullPath, err := osfs.join("mkdir", name)
	if err != nil {
		return err
	}
	return os.Mkdir(fullPath, perm)
}

// Remove implements WriteFS. It removes a file, a symlink, or an empty
// directory.
func (osfs *OSFileSystem) Remove(name string) error {
	fullPath, err := osfs.join("remove", name)
	if err != nil {
		return err
	}
	return os.Remove(fullPath)
}

// Symlink implements WriteFS. The target is taken verbatim and is not
// resolved against the root: a mirror must replicate the link text as-is,
// including absolute and dangling targets.
func (osfs *OSFileSystem) Symlink(target, name string) error {
	fullPath, err := osfs.join("symlink", name)
	if err != nil {
		return err
	}
	return os.Symlink(target, fullPath)
}

// Chmod implements WriteFS.
func (osfs *OSFileSystem) Chmod(name string, mode fs.FileMode) error {
	fullPath, err := osfs.join("chmod", name)
	if err != nil {
		return err
	}
	return os.Chmod(fullPath, mode)
}

// Chown implements WriteFS.
func (osfs *OSFileSystem) Chown(name string, uid, gid int) error {
	fullPath, err := osfs.join("chown", name)
	if err != nil {
		return err
	}
	return os.Chown(fullPath, uid, gid)
}

// Chtimes implements WriteFS.
func (osfs *OSFileSystem) Chtimes(name string, atime, mtime time.Time) error {
	fullPath, err := osfs.join("chtimes", name)
	if err != nil {
		return err
	}
	return os.Chtimes(fullPath, atime, mtime)
}

// Lchtimes implements WriteFS. It updates timestamps without following
// symlinks, which os.Chtimes cannot do.
func (osfs *OSFileSystem) Lchtimes(name string, atime, mtime time.Time) error {
	fullPath, err := osfs.join("lchtimes", name)
	if err != nil {
		return err
	}
	tv := []unix.Timeval{
		unix.NsecToTimeval(atime.UnixNano()),
		unix.NsecToTimeval(mtime.UnixNano()),
	}
	if err := unix.Lutimes(fullPath, tv); err != nil {
		return &fs.PathError{Op: "lchtimes", Path: name, Err: err}
	}
	return nil
}
