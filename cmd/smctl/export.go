package main

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/slotmap/pkg/fs"
	"github.com/calvinalkan/slotmap/pkg/slotmap"
)

// exportEntry mirrors fixtureEntry's shape so an exported snapshot can be
// fed straight back in as a seed fixture (after converting to JSONC, or
// directly if a future seed format accepts YAML — today it's a read-only
// convenience dump, not a durability mechanism).
type exportEntry struct {
	Key     string   `yaml:"key"`
	Kind    string   `yaml:"kind"`
	Count   uint64   `yaml:"count,omitempty"`
	Blob    string   `yaml:"blob,omitempty"`
	Members []string `yaml:"members,omitempty"`
}

type exportSnapshot struct {
	ExportedAt string        `yaml:"exported_at"`
	Entries    []exportEntry `yaml:"entries"`
}

func (r *REPL) cmdExport(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: export <file.yaml>")
		return
	}

	path := args[0]

	realFS := fs.NewReal()

	lock, err := fs.NewExportLock(realFS).TryAcquire(path)
	if err != nil {
		fmt.Printf("error: another export is already writing %s\n", path)
		return
	}
	defer lock.Release()

	snapshot := exportSnapshot{ExportedAt: time.Now().UTC().Format(time.RFC3339)}

	r.table.Iterate(func(h *slotmap.Handle) bool {
		_ = h.Read(func(v *slotmap.Value, key []byte) {
			snapshot.Entries = append(snapshot.Entries, toExportEntry(v, key))
		})

		return true
	})

	out, err := yaml.Marshal(snapshot)
	if err != nil {
		fmt.Printf("error: marshaling snapshot: %v\n", err)
		return
	}

	if err := writeSnapshotFile(realFS, path, out); err != nil {
		fmt.Printf("error: writing %s: %v\n", path, err)
		return
	}

	fmt.Printf("OK: exported %d entries to %s\n", len(snapshot.Entries), path)
}

func toExportEntry(v *slotmap.Value, key []byte) exportEntry {
	e := exportEntry{Key: string(key), Kind: v.Kind().String()}

	switch v.Kind() {
	case slotmap.KindCount:
		e.Count, _ = v.Count()

	case slotmap.KindBlob:
		b, _ := v.Blob()
		e.Blob = string(b)

	case slotmap.KindGroup:
		seq, _ := v.Members()
		for m := range seq {
			_ = m.Read(func(_ *slotmap.Value, memberKey []byte) {
				e.Members = append(e.Members, string(memberKey))
			})
		}
	}

	return e
}
