package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "state.json"))
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	store := newTestStore(t)

	snap, err := store.Load()
	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	want := Snapshot{
		"CFE-0201-00123": {Status: "Fallo", Awardee: "ACME", Amount: "$100"},
		"CFE-0604-00007": {Status: "Abierto"},
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadLegacyAmountKey(t *testing.T) {
	store := newTestStore(t)

	legacy := `{
  "CFE-0201-00123": {
    "Estado": "Fallo",
    "Adjudicado a": "ACME",
    "Monto": "$99"
  },
  "CFE-0201-00456": {
    "Estado": "Abierto",
    "Adjudicado a": "",
    "Monto Adjudicado": "$12"
  }
}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(legacy), 0o644))

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "$99", snap["CFE-0201-00123"].Amount)
	assert.Equal(t, "$12", snap["CFE-0201-00456"].Amount)
}

func TestModernKeyWinsOverLegacy(t *testing.T) {
	store := newTestStore(t)

	raw := `{"X": {"Estado": "Fallo", "Adjudicado a": "", "Monto Adjudicado": "$1", "Monto": "$2"}}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(raw), 0o644))

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "$1", snap["X"].Amount)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(Snapshot{"A": {Status: "Abierto"}}))
	require.NoError(t, store.Save(Snapshot{"B": {Status: "Fallo"}}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.NotContains(t, got, "A")
	assert.Contains(t, got, "B")

	// No temp debris left next to the state file.
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestLoadCorruptFileFails(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{truncated"), 0o644))

	_, err := store.Load()
	assert.Error(t, err)
}

func TestSaveWritesModernAmountKey(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(Snapshot{"X": {Status: "Fallo", Amount: "$5"}}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Monto Adjudicado": "$5"`)
	assert.NotContains(t, string(data), `"Monto":`)
}
