package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/slotmap/pkg/slotmap"
)

// fixtureEntry is one record of a JSONC seed file. Comments and trailing
// commas are permitted in the source file; hujson strips them before this
// struct is unmarshaled.
type fixtureEntry struct {
	Key     string   `json:"key"`
	Kind    string   `json:"kind"`
	Count   uint64   `json:"count,omitempty"`
	Blob    string   `json:"blob,omitempty"`
	Members []string `json:"members,omitempty"`
}

func parseFixture(data []byte) ([]fixtureEntry, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var entries []fixtureEntry

	if err := json.Unmarshal(standardized, &entries); err != nil {
		return nil, fmt.Errorf("invalid JSON after JSONC standardization: %w", err)
	}

	return entries, nil
}

// seedFromFile loads a JSONC fixture into table, inserting every entry
// first (groups start empty) and then wiring group membership in a second
// pass, so a group's members list may reference keys defined later in the
// same file.
func seedFromFile(table *slotmap.Table, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	entries, err := parseFixture(data)
	if err != nil {
		return 0, err
	}

	last := make(map[string]int, len(entries))

	for i, e := range entries {
		v, err := fixtureValue(e)
		if err != nil {
			return 0, fmt.Errorf("entry %q: %w", e.Key, err)
		}

		if _, err := table.Insert([]byte(e.Key), v); err != nil {
			return 0, fmt.Errorf("inserting %q: %w", e.Key, err)
		}

		last[e.Key] = i
	}

	for i, e := range entries {
		if e.Kind != "group" {
			continue
		}

		if last[e.Key] != i {
			continue // overwritten by a later duplicate entry, skip its membership
		}

		g, ok := table.Lookup([]byte(e.Key))
		if !ok {
			continue
		}

		for _, memberKey := range e.Members {
			m, ok := table.Lookup([]byte(memberKey))
			if !ok {
				return 0, fmt.Errorf("group %q: member %q not found", e.Key, memberKey)
			}

			if err := table.GroupAdd(g, m); err != nil {
				return 0, fmt.Errorf("group %q: adding member %q: %w", e.Key, memberKey, err)
			}
		}
	}

	return len(entries), nil
}

func (r *REPL) cmdSeed(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: seed <fixture.jsonc>")
		return
	}

	n, err := seedFromFile(r.table, args[0])
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("OK: seeded %d entries from %s\n", n, args[0])
}

func fixtureValue(e fixtureEntry) (slotmap.Value, error) {
	switch e.Kind {
	case "count":
		return slotmap.NewCount(e.Count), nil
	case "blob":
		return slotmap.NewBlob([]byte(e.Blob))
	case "group":
		return slotmap.NewGroup(), nil
	default:
		return slotmap.Value{}, fmt.Errorf("unknown kind %q", e.Kind)
	}
}
