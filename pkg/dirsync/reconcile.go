package dirsync

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/mykhakos/DirSync/pkg/dirsync/filesystem"
)

// Widened modes used by the force-copy fallback.
const (
	forceFileMode fs.FileMode = 0o666
	forceDirMode  fs.FileMode = 0o777
)

// Reconciler executes verdicts against the destination filesystem. With
// force-copy enabled, operations blocked by a permission error widen the
// destination's mode and retry exactly once.
type Reconciler struct {
	src      filesystem.FullFileSystem
	dst      filesystem.FullFileSystem
	settings *Settings
	logger   zerolog.Logger
}

// NewReconciler creates a Reconciler copying from src to dst.
func NewReconciler(src, dst filesystem.FullFileSystem, settings *Settings, logger zerolog.Logger) *Reconciler {
	return &Reconciler{src: src, dst: dst, settings: settings, logger: logger}
}

// CreateDir makes the destination directory with the source's permission
// bits.
func (r *Reconciler) CreateDir(name string, mode fs.FileMode) error {
	r.logger.Debug().Str("path", name).Stringer("mode", mode.Perm()).Msg("creating directory")
	return r.dst.Mkdir(name, mode.Perm())
}

// CreateSymlink reads the link target from the source and creates an
// equivalent link at the destination. Link metadata is not copied here;
// metadata sync handles it with a non-dereferencing timestamp update.
func (r *Reconciler) CreateSymlink(name string) error {
	target, err := r.src.Readlink(name)
	if err != nil {
		return err
	}
	r.logger.Debug().Str("path", name).Str("target", target).Msg("creating symlink")
	return r.dst.Symlink(target, name)
}

// CopyFile copies content, mode and timestamps of a regular file from the
// source to the destination. An unreadable source fails immediately. On a
// permission failure with force-copy enabled the destination file is
// widened to 0666 and the copy retried once; that grant is deliberately
// not recorded for restore, because the metadata copy after a successful
// retry reimposes the source mode.
func (r *Reconciler) CopyFile(name string) error {
	if err := r.src.Access(name, filesystem.AccessRead); err != nil {
		return fmt.Errorf("source file %q is not readable: %w", name, ErrPermissionDenied)
	}
	srcInfo, err := r.src.Stat(name)
	if err != nil {
		return err
	}
	r.logger.Debug().Str("path", name).Msg("copying file")
	err = r.copyContents(name, srcInfo.Mode().Perm())
	if err != nil && errors.Is(err, fs.ErrPermission) && r.settings.ForceCopy {
		r.logger.Debug().Str("path", name).Stringer("mode", forceFileMode).
			Msg("copy blocked by permissions, temporarily widening destination mode")
		if chmodErr := r.dst.Chmod(name, forceFileMode); chmodErr != nil {
			return chmodErr
		}
		err = r.copyContents(name, srcInfo.Mode().Perm())
	}
	if err != nil {
		return err
	}
	return r.copyStat(name, srcInfo)
}

func (r *Reconciler) copyContents(name string, perm fs.FileMode) error {
	in, err := r.src.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := r.dst.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// copyStat mirrors mode and timestamps onto the destination, then
// attempts ownership. Chown needs privileges most runs do not have, so
// its failure is only logged.
func (r *Reconciler) copyStat(name string, srcInfo fs.FileInfo) error {
	if err := r.dst.Chmod(name, srcInfo.Mode().Perm()); err != nil {
		return err
	}
	if err := r.dst.Chtimes(name, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return err
	}
	md := newMetadata(srcInfo)
	if err := r.dst.Chown(name, int(md.UID), int(md.GID)); err != nil {
		r.logger.Debug().Str("path", name).Err(err).Msg("could not copy ownership")
	}
	return nil
}

// UpdateMetadata reapplies the source's mode, timestamps and owner to an
// otherwise unchanged destination file or directory.
func (r *Reconciler) UpdateMetadata(name string) error {
	srcInfo, err := r.src.Stat(name)
	if err != nil {
		return err
	}
	return r.copyStat(name, srcInfo)
}

// UpdateSymlinkTimes copies the source link's timestamps onto the
// destination link without dereferencing either.
func (r *Reconciler) UpdateSymlinkTimes(name string) error {
	srcInfo, err := r.src.Lstat(name)
	if err != nil {
		return err
	}
	return r.dst.Lchtimes(name, srcInfo.ModTime(), srcInfo.ModTime())
}

// Remove deletes a destination file, symlink, or empty directory. On a
// permission failure with force-copy enabled the entry is widened (0777
// for directories, 0666 otherwise) and the removal retried once.
func (r *Reconciler) Remove(name string, isDir bool) error {
	r.logger.Debug().Str("path", name).Msg("removing")
	err := r.dst.Remove(name)
	if err == nil || !errors.Is(err, fs.ErrPermission) || !r.settings.ForceCopy {
		return err
	}
	mode := forceFileMode
	if isDir {
		mode = forceDirMode
	}
	r.logger.Debug().Str("path", name).Stringer("mode", mode).
		Msg("removal blocked by permissions, temporarily widening mode")
	if chmodErr := r.dst.Chmod(name, mode); chmodErr != nil {
		return chmodErr
	}
	return r.dst.Remove(name)
}
