package dirsync

import (
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/mykhakos/DirSync/pkg/dirsync/filesystem"
)

// grant records a directory whose permissions were temporarily widened.
type grant struct {
	path string
	mode fs.FileMode
}

// Ledger is the ordered list of permission grants pending restoration. It
// spans at most one pass (or one continuous run) and must be drained at
// the end of the pass or on termination, so that no directory is left
// with elevated permissions.
type Ledger struct {
	grants []grant
}

// Record appends a grant for path with its original mode.
func (l *Ledger) Record(path string, mode fs.FileMode) {
	l.grants = append(l.grants, grant{path: path, mode: mode})
}

// Len reports the number of grants pending restoration.
func (l *Ledger) Len() int {
	return len(l.grants)
}

// Restore chmods every recorded path back to its original mode and clears
// the ledger. Restoration is best-effort: failures are logged, never
// returned, and the drained ledger makes repeated calls no-ops.
func (l *Ledger) Restore(fsys filesystem.WriteFS, logger zerolog.Logger) {
	for _, g := range l.grants {
		if err := fsys.Chmod(g.path, g.mode); err != nil {
			logger.Warn().Str("path", g.path).Err(err).Msg("failed to restore directory access mode")
		}
	}
	l.grants = l.grants[:0]
}
