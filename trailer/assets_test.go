package trailer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/trailerflow/types"
)

func TestWriteAsset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "clip.mp4")

	require.NoError(t, WriteAsset(path, []byte("first")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)

	require.NoError(t, WriteAsset(path, []byte("second")))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	// 不留下临时文件
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "clip.mp4", entries[0].Name())
}

func TestWriteAsset_ParentIsFile(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "refs")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := WriteAsset(filepath.Join(blocker, "Hero.png"), []byte("img"))
	require.Error(t, err)
	assert.Equal(t, types.ErrAssetIO, types.GetErrorCode(err))
}
