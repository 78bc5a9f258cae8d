package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slotmap/pkg/slotmap"
)

const testFixture = `[
  // a plain counter
  {"key": "views", "kind": "count", "count": 3},
  {"key": "payload", "kind": "blob", "blob": "hello"},
  {"key": "team", "kind": "group", "members": ["views", "payload"]}, // trailing comma above is fine too
]
`

func TestParseFixture_JSONCWithComments(t *testing.T) {
	entries, err := parseFixture([]byte(testFixture))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "views", entries[0].Key)
	require.Equal(t, "count", entries[0].Kind)
	require.Equal(t, uint64(3), entries[0].Count)
	require.Equal(t, []string{"views", "payload"}, entries[2].Members)
}

func TestParseFixture_InvalidJSON(t *testing.T) {
	_, err := parseFixture([]byte("{not json"))
	require.Error(t, err)
}

func TestSeedFromFile_WiresGroupMembershipInSecondPass(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(testFixture), 0o644))

	table, err := slotmap.New(64)
	require.NoError(t, err)

	n, err := seedFromFile(table, path)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	h, ok := table.Lookup([]byte("team"))
	require.True(t, ok)

	var names []string
	require.NoError(t, h.Read(func(v *slotmap.Value, _ []byte) {
		seq, err := v.Members()
		require.NoError(t, err)
		for m := range seq {
			require.NoError(t, m.Read(func(_ *slotmap.Value, key []byte) {
				names = append(names, string(key))
			}))
		}
	}))

	require.ElementsMatch(t, []string{"views", "payload"}, names)
}

func TestSeedFromFile_UnknownMemberIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.jsonc")
	fixture := `[{"key": "team", "kind": "group", "members": ["nobody"]}]`
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	table, err := slotmap.New(64)
	require.NoError(t, err)

	_, err = seedFromFile(table, path)
	require.Error(t, err)
}
