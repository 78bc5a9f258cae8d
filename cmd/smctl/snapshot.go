package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/calvinalkan/slotmap/pkg/fs"
)

const snapshotFilePerm = 0o644

// writeSnapshotFile writes data to path without ever exposing a
// half-written snapshot: it stages the bytes in a temp file beside path,
// fsyncs it, renames it over path, then fsyncs the containing directory
// so the rename itself survives a crash. A concurrent reader of path
// only ever sees the previous snapshot or the complete new one, never a
// partial one.
//
// Unlike a general-purpose atomic writer, this doesn't need a
// randomized or counter-suffixed temp name to dodge concurrent writers
// of the *same* path: cmdExport already holds an [fs.ExportLock] on path
// for the whole call, so only one goroutine ever stages a temp file for
// a given target at a time. Two different exports running concurrently
// still get distinct temp names because the target's own base name is
// baked into the temp path.
func writeSnapshotFile(fsys fs.FS, path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+".export-tmp")

	tmp, err := fsys.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, snapshotFilePerm)
	if err != nil {
		return fmt.Errorf("staging snapshot: %w", err)
	}

	if err := stageSnapshot(tmp, data); err != nil {
		_ = fsys.Remove(tmpPath)
		return err
	}

	if err := fsys.Rename(tmpPath, path); err != nil {
		_ = fsys.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	return fsyncParentDir(fsys, dir)
}

// stageSnapshot writes data into an already-open temp file and syncs and
// closes it, leaving it ready to be renamed into place.
func stageSnapshot(tmp fs.File, data []byte) error {
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing snapshot contents: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing staged snapshot: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing staged snapshot: %w", err)
	}

	return nil
}

func fsyncParentDir(fsys fs.FS, dir string) error {
	d, err := fsys.Open(dir)
	if err != nil {
		return fmt.Errorf("opening %s to sync: %w", dir, err)
	}
	defer d.Close()

	if err := d.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", dir, err)
	}

	return nil
}
