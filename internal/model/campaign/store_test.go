package campaign

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStoreInitializesDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "campaign.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"campaign": {}}`, string(data))

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	saved := Campaign{
		ID:     "current_campaign",
		Name:   "AI Summer Sale",
		Status: StatusActive,
		HeaderTargetRules: []TargetRule{
			{HeaderName: "user-agent", Condition: CondContains, Value: "ChatGPT"},
		},
		ProductIDs:  []int64{1, 2},
		DiscountIDs: []int64{10},
	}
	require.NoError(t, store.Save(saved))

	got, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, saved, got)
}

func TestFileStoreDelete(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(Campaign{Name: "x", Status: StatusDraft}))
	require.NoError(t, store.Delete())

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileStoreExistingDocumentPreserved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "campaign.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"campaign":{"name":"Kept","status":"active"}}`), 0o644))

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	got, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Kept", got.Name)
}

func TestFileStoreCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "campaign.json"), []byte("not json"), 0o644))

	_, found, err := store.Load()
	assert.Error(t, err)
	assert.False(t, found)
}
