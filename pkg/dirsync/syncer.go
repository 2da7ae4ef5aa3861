package dirsync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/gammazero/toposort"
	"github.com/rs/zerolog"

	"github.com/mykhakos/DirSync/pkg/dirsync/filesystem"
)

// Syncer performs one-way mirroring of a source directory tree onto a
// destination tree. Each pass walks both trees in full: destination items
// absent from the source are removed first, then source items are
// created or updated top-down.
//
// A Syncer is not safe for concurrent use: Sync and SyncForever must not
// be invoked while another pass is in progress on the same instance.
type Syncer struct {
	srcDir   string
	dstDir   string
	src      filesystem.FullFileSystem
	dst      filesystem.FullFileSystem
	settings *Settings
	logger   zerolog.Logger
	ledger   Ledger
	cmp      *Comparator
	rec      *Reconciler
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logging sink. Defaults to DefaultLogger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Syncer) { s.logger = logger }
}

// WithFilesystems overrides the filesystems the engine operates on.
// Defaults are OS filesystems rooted at the source and destination
// directories.
func WithFilesystems(src, dst filesystem.FullFileSystem) Option {
	return func(s *Syncer) {
		s.src = src
		s.dst = dst
	}
}

// New creates a Syncer mirroring srcDir onto dstDir. Both paths should
// have been validated beforehand (ValidateSourceDir, ValidateDestDir).
// A nil settings selects DefaultSettings; the pointer is retained, so
// mutating it between passes reconfigures the next pass.
func New(srcDir, dstDir string, settings *Settings, opts ...Option) *Syncer {
	if settings == nil {
		settings = DefaultSettings()
	}
	s := &Syncer{
		srcDir:   srcDir,
		dstDir:   dstDir,
		src:      filesystem.NewOSFileSystem(srcDir),
		dst:      filesystem.NewOSFileSystem(dstDir),
		settings: settings,
		logger:   DefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cmp = NewComparator(s.src, s.dst, s.settings)
	s.rec = NewReconciler(s.src, s.dst, s.settings, s.logger)
	return s
}

// Sync runs exactly one full synchronization pass. Item-level failures
// are logged as warnings and skipped; the pass visits every reachable
// item regardless, so there is no error return. Directory modes widened
// during the pass are restored before Sync returns.
func (s *Syncer) Sync() {
	s.logger.Debug().Msg("synchronizing")
	defer s.ledger.Restore(s.dst, s.logger)

	if _, err := s.dst.Stat("."); err != nil {
		// Fresh destination root: nothing to delete against.
		s.logger.Info().Str("path", s.dstDir).Msg("creating destination root")
		srcInfo, statErr := s.src.Stat(".")
		if statErr != nil {
			s.logger.Warn().Str("path", s.srcDir).Err(statErr).Msg("failed to stat source root")
			return
		}
		if err := s.rec.CreateDir(".", srcInfo.Mode()); err != nil {
			s.logger.Warn().Str("path", s.dstDir).Err(err).Msg("failed to create destination root")
			return
		}
	} else {
		s.syncDeleted()
	}
	s.syncTree(".")
	s.logger.Debug().Msg("synchronization finished")
}

// SyncForever repeatedly runs Sync, idling for interval between passes,
// until ctx is cancelled. Cancellation is cooperative and observed only
// between passes, never mid-pass. A non-positive interval aborts before
// the first pass with ErrInvalidInterval. The ledger is drained before
// returning, including on an unclassified panic, which is logged as
// critical and stops the loop instead of crashing the process.
func (s *Syncer) SyncForever(ctx context.Context, interval time.Duration) error {
	s.logger.Info().
		Str("src", s.srcDir).
		Str("dst", s.dstDir).
		Stringer("interval", interval).
		Msg("initializing synchronization")
	if interval <= 0 {
		err := fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
		s.logger.Error().Err(err).Msg("aborting")
		return err
	}
	defer s.ledger.Restore(s.dst, s.logger)
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().Interface("panic", rec).Msg("unexpected failure, stopping synchronization")
		}
	}()
	for {
		s.Sync()
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("synchronization stopped")
			return nil
		case <-time.After(interval):
		}
	}
}

// syncDeleted removes destination items whose source counterpart no
// longer exists. Files and symlinks across the whole tree are removed
// first, then the marked directories child-before-parent, so that
// directory removals never fail on leftover contents.
func (s *Syncer) syncDeleted() {
	var rmFiles, rmDirs []string
	s.collectDeleted(".", &rmFiles, &rmDirs)
	for _, name := range rmFiles {
		s.logger.Info().Str("path", name).Msg("removing file")
		if err := s.rec.Remove(name, false); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to remove file")
		}
	}
	for _, name := range sortDirRemovals(rmDirs) {
		s.logger.Info().Str("path", name).Msg("removing directory")
		if err := s.rec.Remove(name, true); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to remove directory")
		}
	}
}

// collectDeleted walks the destination tree below dir, marking files and
// directories absent from the source. Lstat is used for the existence
// probe so that a dangling source symlink still counts as present.
func (s *Syncer) collectDeleted(dir string, rmFiles, rmDirs *[]string) {
	if dir != "." {
		if _, err := s.src.Lstat(dir); err != nil {
			*rmDirs = append(*rmDirs, dir)
		}
	}
	entries, err := s.dst.ReadDir(dir)
	if err != nil {
		s.logger.Warn().Str("path", dir).Err(err).Msg("failed to read destination directory")
		return
	}
	for _, entry := range entries {
		name := path.Join(dir, entry.Name())
		if entry.IsDir() {
			s.collectDeleted(name, rmFiles, rmDirs)
			continue
		}
		if _, err := s.src.Lstat(name); err != nil {
			*rmFiles = append(*rmFiles, name)
		}
	}
}

// sortDirRemovals orders directory removals so that children precede
// their parents, using the dependency edges child -> parent.
func sortDirRemovals(dirs []string) []string {
	if len(dirs) < 2 {
		return dirs
	}
	marked := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		marked[dir] = true
	}
	edges := make([]toposort.Edge, 0, len(dirs))
	for _, dir := range dirs {
		if parent := path.Dir(dir); marked[parent] {
			edges = append(edges, toposort.Edge{dir, parent})
		}
	}
	sorted, err := toposort.Toposort(edges)
	if err != nil {
		// A path hierarchy cannot cycle; keep collection order if it
		// somehow does.
		return dirs
	}
	ordered := make([]string, 0, len(dirs))
	seen := make(map[string]bool, len(dirs))
	for _, v := range sorted {
		if dir, ok := v.(string); ok && marked[dir] {
			ordered = append(ordered, dir)
			seen[dir] = true
		}
	}
	for _, dir := range dirs {
		if !seen[dir] {
			ordered = append(ordered, dir)
		}
	}
	return ordered
}

// syncTree reconciles one source directory level, then recurses into its
// subdirectories, top-down.
func (s *Syncer) syncTree(dir string) {
	entries, err := s.src.ReadDir(dir)
	if err != nil {
		s.logger.Warn().Str("path", dir).Err(err).Msg("failed to read source directory")
		return
	}
	if !s.ensureDirAccess(dir) {
		return
	}
	var subdirs []string
	for _, entry := range entries {
		name := path.Join(dir, entry.Name())
		if entry.IsDir() {
			subdirs = append(subdirs, name)
			s.syncDir(name)
			continue
		}
		s.syncEntry(name, entry)
	}
	for _, name := range subdirs {
		s.syncTree(name)
	}
}

// ensureDirAccess verifies the destination directory can be read,
// written and traversed. With force-copy the mode is widened to 0777 and
// the original recorded in the ledger; without it the whole subtree is
// skipped.
func (s *Syncer) ensureDirAccess(dir string) bool {
	err := s.dst.Access(dir, filesystem.AccessRead|filesystem.AccessWrite|filesystem.AccessExec)
	if err == nil {
		return true
	}
	if errors.Is(err, fs.ErrNotExist) {
		// The destination level does not exist yet; the creation pass
		// below will make it.
		return true
	}
	if !s.settings.ForceCopy {
		s.logger.Warn().Str("path", dir).Msg("skipping directory: insufficient access permissions")
		return false
	}
	info, statErr := s.dst.Stat(dir)
	if statErr != nil {
		s.logger.Warn().Str("path", dir).Err(statErr).Msg("failed to access directory")
		return false
	}
	s.ledger.Record(dir, info.Mode().Perm())
	s.logger.Debug().Str("path", dir).Stringer("mode", forceDirMode).
		Msg("inaccessible directory, temporarily widening mode")
	if err := s.dst.Chmod(dir, forceDirMode); err != nil {
		s.logger.Warn().Str("path", dir).Err(err).Msg("failed to access directory")
		return false
	}
	return true
}

// syncDir reconciles a single directory entry.
func (s *Syncer) syncDir(name string) {
	verdict, err := s.cmp.CompareDir(name)
	if err != nil {
		s.logger.Warn().Str("path", name).Err(err).Msg("failed to compare directory")
		return
	}
	switch verdict {
	case VerdictCreate:
		srcInfo, err := s.src.Stat(name)
		if err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to create directory")
			return
		}
		s.logger.Info().Str("path", name).Msg("creating directory")
		if err := s.rec.CreateDir(name, srcInfo.Mode()); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to create directory")
		}
	case VerdictReplace:
		// The destination exists but is not a directory.
		s.logger.Info().Str("path", name).Msg("updating directory")
		if err := s.rec.Remove(name, false); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to update directory")
			return
		}
		srcInfo, err := s.src.Stat(name)
		if err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to update directory")
			return
		}
		if err := s.rec.CreateDir(name, srcInfo.Mode()); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to update directory")
		}
	case VerdictUpdateMetadata:
		s.logger.Info().Str("path", name).Msg("updating directory metadata")
		if err := s.rec.UpdateMetadata(name); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to update directory metadata")
		}
	}
}

// syncEntry dispatches a non-directory source entry by kind. Kinds that
// are neither regular files nor symlinks are skipped with a warning and
// never abort the pass.
func (s *Syncer) syncEntry(name string, entry fs.DirEntry) {
	switch {
	case entry.Type()&fs.ModeSymlink != 0:
		s.syncSymlink(name)
	case entry.Type().IsRegular():
		s.syncFile(name)
	default:
		s.logger.Warn().Str("path", name).Stringer("type", entry.Type()).
			Err(ErrUnsupportedItem).Msg("skipping item")
	}
}

// syncFile reconciles a single regular file entry.
func (s *Syncer) syncFile(name string) {
	verdict, err := s.cmp.CompareFile(name)
	if err != nil {
		s.logger.Warn().Str("path", name).Err(err).Msg("failed to compare file")
		return
	}
	switch verdict {
	case VerdictCreate:
		s.logger.Info().Str("path", name).Msg("creating file")
		if err := s.rec.CopyFile(name); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to create file")
		}
	case VerdictReplace:
		dstInfo, err := s.dst.Lstat(name)
		if err == nil && !dstInfo.Mode().IsRegular() {
			// A non-file occupies the path; clear it before copying.
			if err := s.rec.Remove(name, dstInfo.IsDir()); err != nil {
				s.logger.Warn().Str("path", name).Err(err).Msg("failed to update file")
				return
			}
		}
		s.logger.Info().Str("path", name).Msg("updating file")
		if err := s.rec.CopyFile(name); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to update file")
		}
	case VerdictUpdateMetadata:
		s.logger.Info().Str("path", name).Msg("updating file metadata")
		if err := s.rec.UpdateMetadata(name); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to update file metadata")
		}
	}
}

// syncSymlink reconciles a single symlink entry.
func (s *Syncer) syncSymlink(name string) {
	verdict, err := s.cmp.CompareSymlink(name)
	if err != nil {
		s.logger.Warn().Str("path", name).Err(err).Msg("failed to compare symlink")
		return
	}
	switch verdict {
	case VerdictCreate:
		s.logger.Debug().Str("path", name).Msg("creating symlink")
		if err := s.rec.CreateSymlink(name); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to create symlink")
		}
	case VerdictReplace:
		s.logger.Info().Str("path", name).Msg("updating symlink")
		dstInfo, err := s.dst.Lstat(name)
		isDir := err == nil && dstInfo.IsDir()
		if err := s.rec.Remove(name, isDir); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to update symlink")
			return
		}
		if err := s.rec.CreateSymlink(name); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to update symlink")
		}
	case VerdictUpdateMetadata:
		s.logger.Info().Str("path", name).Msg("updating symlink metadata")
		if err := s.rec.UpdateSymlinkTimes(name); err != nil {
			s.logger.Warn().Str("path", name).Err(err).Msg("failed to update symlink metadata")
		}
	}
}
