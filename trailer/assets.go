package trailer

import (
	"os"
	"path/filepath"

	"github.com/BaSui01/trailerflow/types"
)

func assetError(format string, args ...any) *types.Error {
	return types.NewErrorf(types.ErrAssetIO, format, args...)
}

// WriteAsset writes data to path, creating the parent directory first. The
// bytes go to a temp file in the same directory which is then renamed, so a
// path that exists always holds a complete asset.
func WriteAsset(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return assetError("failed to create %s", dir).WithCause(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return assetError("failed to create temp file for %s", path).WithCause(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return assetError("failed to write %s", path).WithCause(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return assetError("failed to sync %s", path).WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return assetError("failed to close %s", path).WithCause(err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return assetError("failed to chmod %s", path).WithCause(err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return assetError("failed to move asset into %s", path).WithCause(err)
	}
	return nil
}

// readReference loads a saved reference image.
func readReference(name, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, assetError("failed to read reference image for %q at %s", name, path).WithCause(err)
	}
	return data, nil
}
