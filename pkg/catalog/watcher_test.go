package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sam33128/Gita-pyqvault/pkg/types"
)

func writeDocument(t *testing.T, path string, papers []types.Paper) {
	t.Helper()
	data, err := json.Marshal(papers)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func startTestWatcher(t *testing.T, store *Store) *Watcher {
	t.Helper()
	w, err := NewWatcher(store)
	require.NoError(t, err)
	w.Start()
	t.Cleanup(w.Stop)
	return w
}

func TestWatcherReloadsAfterExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.json")
	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(testPaper("p1", "Physics")))

	startTestWatcher(t, store)

	writeDocument(t, path, []types.Paper{
		testPaper("p1", "Physics"),
		testPaper("p2", "Chemistry"),
	})

	require.Eventually(t, func() bool { return store.Len() == 2 },
		5*time.Second, 50*time.Millisecond)

	got, err := store.Get("p2")
	require.NoError(t, err)
	assert.Equal(t, "Chemistry", got.Subject)
}

func TestWatcherKeepsSnapshotOnCorruptEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.json")
	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(testPaper("p1", "Physics")))

	startTestWatcher(t, store)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	// Wait past the debounce window; the previous snapshot must survive.
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, 1, store.Len())
	_, err = store.Get("p1")
	assert.NoError(t, err)

	// The watcher is still alive and picks up the next valid write.
	writeDocument(t, path, []types.Paper{
		testPaper("p1", "Physics"),
		testPaper("p2", "Chemistry"),
		testPaper("p3", "Maths"),
	})
	require.Eventually(t, func() bool { return store.Len() == 3 },
		5*time.Second, 50*time.Millisecond)
}
