package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content of "+name), 0600))
	}
}

func TestArchiveAllIncludesEveryFile(t *testing.T) {
	root := t.TempDir()
	pdfDir := filepath.Join(root, "pdf")
	require.NoError(t, os.MkdirAll(filepath.Join(pdfDir, "nested"), 0755))
	writeFiles(t, pdfDir, "receipt_2.pdf", "receipt_10.pdf", "receipt_1.pdf", "notes.txt")
	writeFiles(t, root, "outside.pdf")

	target := filepath.Join(root, "all_receipts.zip")
	a, err := New(pdfDir, target, nil, nil)
	require.NoError(t, err)

	result, err := a.ArchiveAll()
	require.NoError(t, err)

	want := []string{"notes.txt", "receipt_1.pdf", "receipt_10.pdf", "receipt_2.pdf"}
	if diff := cmp.Diff(want, result.Members); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}

	stored, err := Members(target)
	require.NoError(t, err)
	assert.Equal(t, want, stored)
	assert.NoFileExists(t, target+".tmp")
}

func TestArchiveAllIsRepeatable(t *testing.T) {
	root := t.TempDir()
	pdfDir := filepath.Join(root, "pdf")
	require.NoError(t, os.MkdirAll(pdfDir, 0755))
	writeFiles(t, pdfDir, "receipt_1.pdf", "receipt_3.pdf")

	target := filepath.Join(root, "all_receipts.zip")
	a, err := New(pdfDir, target, nil, nil)
	require.NoError(t, err)

	_, err = a.ArchiveAll()
	require.NoError(t, err)
	first, err := Members(target)
	require.NoError(t, err)

	_, err = a.ArchiveAll()
	require.NoError(t, err)
	second, err := Members(target)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestArchiveAllContent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "receipt_5.pdf")

	target := filepath.Join(root, "out", "receipts.zip")
	a, err := New(root, target, nil, nil)
	require.NoError(t, err)
	_, err = a.ArchiveAll()
	require.NoError(t, err)

	r, err := zip.OpenReader(target)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.File, 1)
	rc, err := r.File[0].Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "content of receipt_5.pdf", string(data))
}

func TestArchiveAllSkipsItsOwnTarget(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "receipt_1.pdf")

	target := filepath.Join(dir, "all_receipts.zip")
	a, err := New(dir, target, nil, nil)
	require.NoError(t, err)

	_, err = a.ArchiveAll()
	require.NoError(t, err)
	result, err := a.ArchiveAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"receipt_1.pdf"}, result.Members)
}

func TestArchiveAllIncludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "receipt_1.pdf", "receipt_2.pdf", "draft.pdf", "receipt_1.png")

	a, err := New(dir, filepath.Join(t.TempDir(), "r.zip"), []string{"receipt_*.pdf"}, nil)
	require.NoError(t, err)

	result, err := a.ArchiveAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"receipt_1.pdf", "receipt_2.pdf"}, result.Members)
}

func TestArchiveAllEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "r.zip")

	a, err := New(dir, target, nil, nil)
	require.NoError(t, err)
	result, err := a.ArchiveAll()
	require.NoError(t, err)
	assert.Empty(t, result.Members)

	stored, err := Members(target)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestArchiveAllMissingDirectory(t *testing.T) {
	a, err := New(filepath.Join(t.TempDir(), "absent"), filepath.Join(t.TempDir(), "r.zip"), nil, nil)
	require.NoError(t, err)

	_, err = a.ArchiveAll()
	assert.Error(t, err)
}

func TestNewRejectsBadPattern(t *testing.T) {
	_, err := New(t.TempDir(), "r.zip", []string{"[unclosed"}, nil)
	assert.ErrorContains(t, err, "invalid include pattern")
}
