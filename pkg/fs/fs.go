// Package fs is the on-disk seam behind cmd/smctl's export path: an
// [FS] interface narrow enough to fake in a test, an [ExportLock] that
// keeps two concurrent "smctl export" runs from stomping on the same
// snapshot file, and a [Real] implementation for actual use.
//
// The slotmap core itself never touches a filesystem - fixed-capacity,
// in-memory storage is the whole point (see spec.md's persistence
// non-goal). Everything in this package exists only to support smctl's
// export command, which stages a snapshot in a temp file and renames it
// into place (see cmd/smctl's writeSnapshotFile).
package fs

import (
	"io"
	"os"
)

// File is what cmd/smctl's export path needs from an open file: read,
// write, seek, close, plus the OS-level bits ([File.Fd], [File.Sync],
// [File.Chmod]) that staging-then-renaming and flock-based locking
// require. [os.File] satisfies it; tests may substitute a double.
//
// Fd must return a real OS file descriptor - [ExportLock] passes it
// straight to [syscall.Flock].
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type File interface {
	io.ReadWriteCloser
	io.Seeker

	// Fd returns the OS file descriptor backing this file.
	Fd() uintptr

	// Stat reports metadata for this open file, used by [ExportLock] to
	// confirm a lock file's inode hasn't changed out from under it.
	Stat() (os.FileInfo, error)

	// Sync flushes buffered writes to disk.
	Sync() error

	// Chmod sets this file's mode.
	Chmod(mode os.FileMode) error
}

// FS is the handful of filesystem operations cmd/smctl's export path
// actually calls: stage a temp file, rename it into place, fsync the
// containing directory, and take an advisory lock on a sibling file.
// Nothing here reads a whole file, lists a directory, or removes one
// recursively - export never needs to, so those aren't part of the seam.
//
// [Real] is the only production implementation; substitute a fake in
// tests that shouldn't touch a real disk.
//
// Paths use OS semantics, not the slash-separated paths of the standard
// library's io/fs package.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type FS interface {
	// Open opens an existing file for reading, used to fsync a
	// directory after a rename.
	Open(path string) (File, error)

	// OpenFile opens (optionally creating) a file with the given flags
	// and permissions - used both to stage a snapshot's temp file and
	// to open/create an export lock file.
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// MkdirAll creates a directory and any missing parents, used when
	// an export lock file's directory doesn't exist yet.
	MkdirAll(path string, perm os.FileMode) error

	// Stat reports metadata for path, used by [ExportLock] to detect a
	// lock file that was replaced out from under an in-progress
	// acquisition.
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether path exists. Returns (false, nil) if not
	// found, (false, err) on any other error.
	Exists(path string) (bool, error)

	// Remove deletes a file, used to clean up a staged temp file after
	// a failed export write.
	Remove(path string) error

	// Rename atomically replaces newpath with oldpath on the same
	// filesystem - how a staged snapshot becomes the visible one.
	Rename(oldpath, newpath string) error
}

// Compile-time interface check.
var _ File = (*os.File)(nil)
