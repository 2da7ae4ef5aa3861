package dirsync

import (
	"io/fs"
	"syscall"
	"time"
)

// Metadata is a point-in-time snapshot of the stat fields the comparator
// looks at. It is rebuilt from a fresh stat on every comparison and never
// cached across passes.
type Metadata struct {
	Mode  fs.FileMode
	UID   uint32
	GID   uint32
	MTime time.Time
	Size  int64
}

func newMetadata(info fs.FileInfo) Metadata {
	md := Metadata{
		Mode:  info.Mode(),
		MTime: info.ModTime(),
		Size:  info.Size(),
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		md.UID = st.Uid
		md.GID = st.Gid
	}
	return md
}

// mtimeEqual reports whether two timestamps match once truncated to
// millisecond precision. Sub-millisecond jitter differs across
// filesystems and must not count as a change.
func mtimeEqual(a, b time.Time) bool {
	return a.UnixMilli() == b.UnixMilli()
}

// mtimeAfter reports whether a is strictly newer than b at millisecond
// precision.
func mtimeAfter(a, b time.Time) bool {
	return a.UnixMilli() > b.UnixMilli()
}
