package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/slotmap/pkg/fs"
)

func TestExportLock_TryAcquire_SucceedsWhenUnheld(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "snapshot.yaml")

	lock := fs.NewExportLock(fs.NewReal())

	h, err := lock.TryAcquire(target)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	defer h.Release()

	if _, err := os.Stat(target + ".lock"); err != nil {
		t.Fatalf("expected sibling lock file to exist: %v", err)
	}

	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("TryAcquire must not create or touch the target file itself, stat err=%v", err)
	}
}

func TestExportLock_TryAcquire_FailsWhileHeldByAnotherHandle(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "snapshot.yaml")

	lock := fs.NewExportLock(fs.NewReal())

	first, err := lock.TryAcquire(target)
	if err != nil {
		t.Fatalf("first TryAcquire: %v", err)
	}
	defer first.Release()

	_, err = lock.TryAcquire(target)
	if !errors.Is(err, fs.ErrLockHeld) {
		t.Fatalf("second TryAcquire err=%v, want ErrLockHeld", err)
	}
}

func TestExportLock_TryAcquire_SucceedsAfterRelease(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "snapshot.yaml")

	lock := fs.NewExportLock(fs.NewReal())

	first, err := lock.TryAcquire(target)
	if err != nil {
		t.Fatalf("first TryAcquire: %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	second, err := lock.TryAcquire(target)
	if err != nil {
		t.Fatalf("second TryAcquire after release: %v", err)
	}
	defer second.Release()
}

func TestExportLock_TryAcquire_CreatesMissingParentDirectories(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "deeper", "snapshot.yaml")

	lock := fs.NewExportLock(fs.NewReal())

	h, err := lock.TryAcquire(target)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	defer h.Release()

	if _, err := os.Stat(filepath.Join(dir, "nested", "deeper")); err != nil {
		t.Fatalf("expected parent directories to be created: %v", err)
	}
}

func TestExportLock_Release_IsIdempotent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "snapshot.yaml")

	lock := fs.NewExportLock(fs.NewReal())

	h, err := lock.TryAcquire(target)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}

	if err := h.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}

	if err := h.Release(); err != nil {
		t.Fatalf("second Release should be a no-op, got: %v", err)
	}
}

// TestExportLock_SurvivesRenameOverTarget is the scenario a lock taken
// on the export target itself cannot survive: the lock holder replaces
// target by renaming a temp file over it mid-export (exactly what
// cmd/smctl's export command does when it stages a snapshot and renames
// it into place), and a second exporter's TryAcquire must still observe
// the lock as held, because neither exporter's lock lives on target's
// inode.
func TestExportLock_SurvivesRenameOverTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "snapshot.yaml")

	lock := fs.NewExportLock(fs.NewReal())

	first, err := lock.TryAcquire(target)
	if err != nil {
		t.Fatalf("first TryAcquire: %v", err)
	}
	defer first.Release()

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, []byte("entries: []\n"), 0o644); err != nil {
		t.Fatalf("writing staged file: %v", err)
	}

	if err := os.Rename(tmp, target); err != nil {
		t.Fatalf("renaming staged file over target: %v", err)
	}

	if _, err := lock.TryAcquire(target); !errors.Is(err, fs.ErrLockHeld) {
		t.Fatalf("TryAcquire after target replaced err=%v, want ErrLockHeld", err)
	}
}
