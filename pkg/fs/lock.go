package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

var (
	// ErrLockHeld is returned by [ExportLock.TryAcquire] when another
	// exporter already holds the lock for the same target.
	ErrLockHeld = errors.New("export lock held")

	// errInodeMismatch is an internal sentinel indicating the lock file was
	// replaced between open and flock. Callers retry.
	errInodeMismatch = errors.New("inode mismatch")
)

// ExportLock serializes concurrent smctl exports to the same target path
// using flock(2) (via [syscall.Flock]) on a dedicated sibling lock file.
//
// It never locks target itself. flock locks an inode, not a pathname, and
// cmd/smctl's writeSnapshotFile replaces target's inode via rename on
// every successful export. A lock taken on target would therefore guard
// nothing once the exporter holding it renames a new file over target: a
// second exporter racing in right after that rename opens the
// freshly-renamed-in inode and acquires it immediately, even though the
// first exporter is still mid-write. Locking target+".lock" instead gives
// every exporter a stable inode that no export ever renames over.
//
// ExportLock verifies that the file descriptor it locked still refers to
// the file currently at the lock path at the moment the lock is acquired
// (protecting the open→lock window against a concurrent creator of the
// same lock file).
//
// This implementation is Unix-only.
type ExportLock struct {
	fs    FS
	flock func(fd int, how int) error
}

// NewExportLock creates an ExportLock that uses the given filesystem for
// file operations.
func NewExportLock(fsys FS) *ExportLock {
	return &ExportLock{
		fs:    fsys,
		flock: syscall.Flock,
	}
}

// LockHandle represents a held export lock. Call [LockHandle.Release] to
// release it.
type LockHandle struct {
	mu    sync.Mutex
	file  File
	flock func(fd int, how int) error
}

// Release releases the lock and closes the underlying lock file
// descriptor.
//
// Release is idempotent - calling it multiple times is safe and
// subsequent calls return nil.
//
// If both unlocking and closing fail, Release returns an error that
// wraps both underlying errors (see [errors.Join]).
func (h *LockHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return nil
	}

	fd := int(h.file.Fd())

	unlockErr := flockRetryEINTR(h.flock, fd, syscall.LOCK_UN)
	closeErr := h.file.Close()
	h.file = nil

	if unlockErr != nil {
		unlockErr = fmt.Errorf("unlocking export lock: %w", unlockErr)
	}

	if closeErr != nil {
		closeErr = fmt.Errorf("closing export lock fd: %w", closeErr)
	}

	return errors.Join(unlockErr, closeErr)
}

// TryAcquire attempts, without blocking, to acquire the export lock that
// guards target. The lock is taken on a dedicated sibling file
// (target+".lock"), created lazily along with any missing parent
// directories - never on target itself.
//
// Returns [ErrLockHeld] if another exporter currently holds the lock.
func (l *ExportLock) TryAcquire(target string) (*LockHandle, error) {
	lockPath := target + ".lock"

	for {
		file, err := l.openLockFile(lockPath)
		if err != nil {
			return nil, fmt.Errorf("opening export lock file: %w", err)
		}

		err = l.acquire(file, lockPath)
		if err == nil {
			return &LockHandle{file: file, flock: l.flock}, nil
		}

		_ = file.Close()

		if errors.Is(err, errInodeMismatch) {
			continue
		}

		return nil, err
	}
}

const (
	lockFilePerm = 0o600
	lockDirPerm  = 0o755
)

func (l *ExportLock) openLockFile(path string) (File, error) {
	f, err := l.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, lockFilePerm)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return f, err
	}

	if err := l.fs.MkdirAll(filepath.Dir(path), lockDirPerm); err != nil {
		return nil, err
	}

	return l.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, lockFilePerm)
}

// acquire attempts a non-blocking exclusive flock on file and verifies
// its inode still matches lockPath. On success, file is locked and ready
// to use. On failure, file is unlocked (if needed) but NOT closed - the
// caller must close it.
//
// Returns:
//   - nil: lock acquired successfully
//   - ErrLockHeld: lock held by another exporter
//   - errInodeMismatch: the lock file at lockPath was replaced, caller should retry
//   - other error: something went wrong
func (l *ExportLock) acquire(file File, lockPath string) error {
	fd := int(file.Fd())

	if err := flockRetryEINTR(l.flock, fd, syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		if isWouldBlock(err) {
			return ErrLockHeld
		}

		return fmt.Errorf("flock: %w", err)
	}

	match, err := l.inodeMatchesPath(lockPath, file)
	if err != nil {
		_ = flockRetryEINTR(l.flock, fd, syscall.LOCK_UN)

		if errors.Is(err, os.ErrNotExist) {
			return errInodeMismatch
		}

		return fmt.Errorf("verifying inode match: %w", err)
	}

	if !match {
		_ = flockRetryEINTR(l.flock, fd, syscall.LOCK_UN)
		return errInodeMismatch
	}

	return nil
}

// inodeMatchesPath verifies that f (the open file descriptor we're about
// to use as the lock) still refers to the file currently at path.
//
// A pathname can be replaced between open and flock, or while another
// goroutine is racing to create the same lock file for the first time:
// rename, delete+recreate, etc. Without this check, two callers could
// each successfully flock a different inode while believing they both
// locked "the lock file at path".
func (l *ExportLock) inodeMatchesPath(path string, f File) (bool, error) {
	openInfo, err := f.Stat()
	if err != nil {
		return false, err
	}

	openSys, ok := openInfo.Sys().(*syscall.Stat_t)
	if !ok || openSys == nil {
		return false, fmt.Errorf("file.Stat Sys=%T, want *syscall.Stat_t", openInfo.Sys())
	}

	pathInfo, err := l.fs.Stat(path)
	if err != nil {
		return false, err
	}

	pathSys, ok := pathInfo.Sys().(*syscall.Stat_t)
	if !ok || pathSys == nil {
		return false, fmt.Errorf("fs.Stat Sys=%T, want *syscall.Stat_t", pathInfo.Sys())
	}

	return openSys.Dev == pathSys.Dev && openSys.Ino == pathSys.Ino, nil
}

func isWouldBlock(err error) bool {
	return errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN)
}

// flockRetryEINTR wraps flock, retrying on EINTR.
//
// EINTR means the syscall was interrupted by a signal before it could
// complete - common on Unix from SIGWINCH, SIGCHLD, timers, etc. When
// this happens the syscall didn't fail, it just needs to be retried.
//
// We cap retries to avoid spinning forever under pathological signal
// storms; in practice this limit should never be hit.
func flockRetryEINTR(flock func(fd int, how int) error, fd int, how int) error {
	const maxEINTRRetries = 10000

	var err error
	for range maxEINTRRetries {
		err = flock(fd, how)
		if err == nil || !errors.Is(err, syscall.EINTR) {
			return err
		}
	}

	return err
}
