package fs

import (
	"os"
)

// Real is the production [FS]: every method reaches straight into the
// [os] package. It holds no state of its own - [ExportLock] and
// writeSnapshotFile carry the actual export bookkeeping (lock file
// paths, temp file names); Real just does what it's told.
type Real struct{}

// NewReal returns a [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// Open opens an existing file for reading - used to fsync a directory
// once a snapshot rename lands.
func (r *Real) Open(path string) (File, error) {
	return os.Open(path)
}

// OpenFile opens or creates a file with the given flags and permissions -
// used both for a snapshot's staged temp file and for an export lock's
// sibling file.
func (r *Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}

// MkdirAll creates path and any missing parents, needed the first time an
// export lock file's directory doesn't exist yet.
func (r *Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Stat reports metadata for path, used to confirm a lock file's inode
// hasn't changed out from under an in-progress [ExportLock.TryAcquire].
func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists reports whether path exists, collapsing [os.Stat]'s error into a
// plain bool for the not-found case.
func (r *Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// Remove deletes path - used to clean up a staged temp file after a
// failed snapshot write.
func (r *Real) Remove(path string) error {
	return os.Remove(path)
}

// Rename atomically replaces newpath with oldpath - the step that
// publishes a staged snapshot.
func (r *Real) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
