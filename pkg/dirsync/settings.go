package dirsync

import (
	"fmt"
	"strings"
)

// SyncMode selects how file changes are detected.
type SyncMode uint8

const (
	// SyncModeQuick relies on item metadata only (size and time of the
	// last modification). File contents are never read.
	SyncModeQuick SyncMode = iota
	// SyncModeFull additionally compares file contents via MD5 hashes
	// when metadata shows no definitive change.
	SyncModeFull
)

func (m SyncMode) String() string {
	switch m {
	case SyncModeQuick:
		return "QUICK"
	case SyncModeFull:
		return "FULL"
	default:
		return fmt.Sprintf("SyncMode(%d)", uint8(m))
	}
}

// ParseSyncMode converts a mode name to a SyncMode. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseSyncMode(s string) (SyncMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "QUICK":
		return SyncModeQuick, nil
	case "FULL":
		return SyncModeFull, nil
	default:
		return SyncModeFull, fmt.Errorf("%w: %q", ErrInvalidSyncMode, s)
	}
}

// Settings configures a Syncer. The engine holds the pointer it is
// constructed with: mutations between passes are allowed and take effect
// on the next Sync call.
type Settings struct {
	// Mode selects QUICK or FULL change detection.
	Mode SyncMode
	// ForceCopy permits temporarily widening destination permissions
	// when an operation is otherwise blocked.
	ForceCopy bool
	// SyncMeta also synchronizes metadata of items whose contents are
	// unchanged.
	SyncMeta bool
}

// DefaultSettings returns the default configuration: FULL mode with
// force-copy and metadata sync disabled.
func DefaultSettings() *Settings {
	return &Settings{Mode: SyncModeFull}
}
