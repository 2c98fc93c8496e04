package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T) *DiskFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	f, err := OpenDiskFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestDiskFile_AllocateReadWrite(t *testing.T) {
	f := newTestFile(t)

	p, err := f.AllocatePage()
	require.NoError(t, err)
	require.NotEqual(t, InvalidPageNum, p.PageNum())

	copy(p.Data(), []byte("hello page"))
	require.NoError(t, f.WritePage(p))

	got, err := f.ReadPage(p.PageNum())
	require.NoError(t, err)
	require.Equal(t, "hello page", string(got.Data()[:len("hello page")]))
}

func TestDiskFile_AllocatePage_AssignsDistinctNumbers(t *testing.T) {
	f := newTestFile(t)

	p1, err := f.AllocatePage()
	require.NoError(t, err)
	p2, err := f.AllocatePage()
	require.NoError(t, err)

	require.NotEqual(t, p1.PageNum(), p2.PageNum())
}

func TestDiskFile_DeletePage_RecyclesNumber(t *testing.T) {
	f := newTestFile(t)

	p1, err := f.AllocatePage()
	require.NoError(t, err)

	require.NoError(t, f.DeletePage(p1.PageNum()))

	p2, err := f.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, p1.PageNum(), p2.PageNum())
}

func TestDiskFile_HeaderSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	f, err := OpenDiskFile(path)
	require.NoError(t, err)
	p, err := f.AllocatePage()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f2, err := OpenDiskFile(path)
	require.NoError(t, err)
	defer func() { _ = f2.Close() }()

	p2, err := f2.AllocatePage()
	require.NoError(t, err)
	require.NotEqual(t, p.PageNum(), p2.PageNum())
}
