package audit

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sam33128/Gita-pyqvault/pkg/catalog"
	"github.com/Sam33128/Gita-pyqvault/pkg/files"
	"github.com/Sam33128/Gita-pyqvault/pkg/types"
)

func setup(t *testing.T) (*catalog.Store, *files.Repository, *Checker) {
	t.Helper()
	dir := t.TempDir()

	store, err := catalog.NewStore(filepath.Join(dir, "papers.json"))
	require.NoError(t, err)

	repo, err := files.NewRepository(filepath.Join(dir, "uploads"), nil)
	require.NoError(t, err)

	return store, repo, NewChecker(store, repo)
}

func addPaper(t *testing.T, store *catalog.Store, repo *files.Repository, id, name string) types.Paper {
	t.Helper()

	ref, err := repo.Store(bytes.NewReader([]byte("content")), "2/3/Physics/Mid", name)
	require.NoError(t, err)

	paper := types.Paper{
		ID:               id,
		Subject:          "Physics",
		Year:             2,
		Semester:         3,
		ExamType:         types.ExamTypeMid,
		ExamYear:         2024,
		OriginalFilename: name,
		StoredPath:       ref,
		UploadedAt:       time.Now(),
	}
	require.NoError(t, store.Append(paper))
	return paper
}

func TestAuditConsistent(t *testing.T) {
	store, repo, checker := setup(t)
	addPaper(t, store, repo, "p1", "a.pdf")
	addPaper(t, store, repo, "p2", "b.pdf")

	report, err := checker.Run()
	require.NoError(t, err)

	assert.True(t, report.Consistent())
	assert.Equal(t, 2, report.Records)
	assert.Equal(t, 2, report.Files)
}

func TestAuditOrphanedRecord(t *testing.T) {
	store, repo, checker := setup(t)
	paper := addPaper(t, store, repo, "p1", "a.pdf")

	// File removed without the record: an orphaned record.
	require.NoError(t, repo.Delete(paper.StoredPath))

	report, err := checker.Run()
	require.NoError(t, err)

	assert.False(t, report.Consistent())
	assert.Equal(t, []string{"p1"}, report.OrphanedRecords)
	assert.Empty(t, report.OrphanedFiles)
}

func TestAuditOrphanedFile(t *testing.T) {
	store, repo, checker := setup(t)
	paper := addPaper(t, store, repo, "p1", "a.pdf")

	// Record removed without the file: an orphaned file.
	_, err := store.Remove("p1")
	require.NoError(t, err)

	report, err := checker.Run()
	require.NoError(t, err)

	assert.False(t, report.Consistent())
	assert.Empty(t, report.OrphanedRecords)
	assert.Equal(t, []string{paper.StoredPath}, report.OrphanedFiles)
}

func TestAuditEmpty(t *testing.T) {
	_, _, checker := setup(t)

	report, err := checker.Run()
	require.NoError(t, err)

	assert.True(t, report.Consistent())
	assert.Zero(t, report.Records)
	assert.Zero(t, report.Files)
}
