package dirsync

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/mykhakos/DirSync/pkg/dirsync/filesystem"
)

// Verdict classifies a single source item against its destination
// counterpart.
type Verdict int

const (
	// VerdictUnchanged means the destination already matches the source.
	VerdictUnchanged Verdict = iota
	// VerdictCreate means the destination item does not exist yet.
	VerdictCreate
	// VerdictReplace means the destination exists but must be rebuilt.
	VerdictReplace
	// VerdictUpdateMetadata means only mode, owner or timestamps differ.
	VerdictUpdateMetadata
	// VerdictSkip means the item kind cannot be synchronized.
	VerdictSkip
)

func (v Verdict) String() string {
	switch v {
	case VerdictUnchanged:
		return "unchanged"
	case VerdictCreate:
		return "create"
	case VerdictReplace:
		return "replace"
	case VerdictUpdateMetadata:
		return "update-metadata"
	case VerdictSkip:
		return "skip"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// hashChunkSize is the read size used when streaming file contents into
// the content digest.
const hashChunkSize = 4096

// Comparator decides, per item, whether the destination differs from the
// source and how. All stats are fetched fresh per comparison.
type Comparator struct {
	src      filesystem.FullFileSystem
	dst      filesystem.FullFileSystem
	settings *Settings
}

// NewComparator creates a Comparator over the given source and
// destination filesystems.
func NewComparator(src, dst filesystem.FullFileSystem, settings *Settings) *Comparator {
	return &Comparator{src: src, dst: dst, settings: settings}
}

// CompareDir classifies a source directory against its destination path.
func (c *Comparator) CompareDir(name string) (Verdict, error) {
	dstInfo, err := c.dst.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return VerdictCreate, nil
	}
	if err != nil {
		return VerdictUnchanged, err
	}
	if !dstInfo.IsDir() {
		return VerdictReplace, nil
	}
	if c.settings.SyncMeta {
		srcInfo, err := c.src.Stat(name)
		if err != nil {
			return VerdictUnchanged, err
		}
		srcMeta, dstMeta := newMetadata(srcInfo), newMetadata(dstInfo)
		if !mtimeEqual(srcMeta.MTime, dstMeta.MTime) ||
			srcMeta.UID != dstMeta.UID || srcMeta.GID != dstMeta.GID {
			return VerdictUpdateMetadata, nil
		}
	}
	return VerdictUnchanged, nil
}

// CompareFile classifies a regular source file against its destination
// path. In FULL mode the content digest is computed only after the
// metadata comparison finds no definitive difference, since hashing reads
// the whole file.
func (c *Comparator) CompareFile(name string) (Verdict, error) {
	srcInfo, err := c.src.Stat(name)
	if err != nil {
		return VerdictUnchanged, err
	}
	dstInfo, err := c.dst.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return VerdictCreate, nil
	}
	if err != nil {
		return VerdictUnchanged, err
	}
	if !dstInfo.Mode().IsRegular() {
		return VerdictReplace, nil
	}
	srcMeta, dstMeta := newMetadata(srcInfo), newMetadata(dstInfo)
	changed := srcMeta.Size != dstMeta.Size || mtimeAfter(srcMeta.MTime, dstMeta.MTime)
	if !changed && c.settings.Mode == SyncModeFull {
		differs, err := c.contentDiffers(name)
		if err != nil {
			return VerdictUnchanged, err
		}
		changed = differs
	}
	if changed {
		return VerdictReplace, nil
	}
	if c.settings.SyncMeta &&
		(srcMeta.Mode != dstMeta.Mode || srcMeta.UID != dstMeta.UID || srcMeta.GID != dstMeta.GID) {
		return VerdictUpdateMetadata, nil
	}
	return VerdictUnchanged, nil
}

// CompareSymlink classifies a source symlink against its destination
// path. Two links match when their targets are textually equal.
func (c *Comparator) CompareSymlink(name string) (Verdict, error) {
	srcInfo, err := c.src.Lstat(name)
	if err != nil {
		return VerdictUnchanged, err
	}
	dstInfo, err := c.dst.Lstat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return VerdictCreate, nil
	}
	if err != nil {
		return VerdictUnchanged, err
	}
	if dstInfo.Mode()&fs.ModeSymlink == 0 {
		return VerdictReplace, nil
	}
	srcTarget, err := c.src.Readlink(name)
	if err != nil {
		return VerdictUnchanged, err
	}
	dstTarget, err := c.dst.Readlink(name)
	if err != nil {
		return VerdictUnchanged, err
	}
	if srcTarget != dstTarget {
		return VerdictReplace, nil
	}
	if c.settings.SyncMeta && !mtimeEqual(srcInfo.ModTime(), dstInfo.ModTime()) {
		return VerdictUpdateMetadata, nil
	}
	return VerdictUnchanged, nil
}

func (c *Comparator) contentDiffers(name string) (bool, error) {
	srcSum, err := digest(c.src, name)
	if err != nil {
		return false, err
	}
	dstSum, err := digest(c.dst, name)
	if err != nil {
		return false, err
	}
	return srcSum != dstSum, nil
}

// digest streams a file through MD5 in fixed-size chunks.
func digest(fsys filesystem.ReadFS, name string) ([md5.Size]byte, error) {
	var sum [md5.Size]byte
	f, err := fsys.Open(name)
	if err != nil {
		return sum, err
	}
	defer func() { _ = f.Close() }()

	h := md5.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return sum, err
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
