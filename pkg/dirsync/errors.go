package dirsync

import "errors"

// Sentinel errors reported by the engine. Validation errors
// (ErrPathNotFound, ErrNotADirectory) surface before a pass starts;
// everything that happens during a pass is logged and skipped instead.
var (
	ErrPathNotFound     = errors.New("path does not exist")
	ErrNotADirectory    = errors.New("not a directory")
	ErrPermissionDenied = errors.New("insufficient access permissions")
	ErrUnsupportedItem  = errors.New("item type is not supported")
	ErrInvalidInterval  = errors.New("interval must be a positive duration")
	ErrInvalidSyncMode  = errors.New("invalid synchronization mode")
)
