package trailer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	refsDir      = "refs"
	scenesDir    = "scenes"
	manifestFile = "manifest.json"
	refExt       = ".png"
)

// Layout maps assets to paths under one output root. Each run or test gets
// its own Layout, so runs never share output state.
type Layout struct {
	Root string
}

// NewLayout returns a Layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

func (l Layout) RefsDir() string   { return filepath.Join(l.Root, refsDir) }
func (l Layout) ScenesDir() string { return filepath.Join(l.Root, scenesDir) }

// RefPath is refs/<character_name>.png.
func (l Layout) RefPath(characterName string) string {
	return filepath.Join(l.RefsDir(), characterName+refExt)
}

// ScenePath is scenes/scene_<NN>.mp4, NN zero-padded to at least two digits.
func (l Layout) ScenePath(sceneNumber int) string {
	return filepath.Join(l.ScenesDir(), SceneFileName(sceneNumber))
}

// SceneFileName returns the base name of a scene clip.
func SceneFileName(sceneNumber int) string {
	return fmt.Sprintf("scene_%02d.mp4", sceneNumber)
}

func (l Layout) ManifestPath() string {
	return filepath.Join(l.Root, manifestFile)
}

// ScanReferences rebuilds a ReferenceMap from refs/*.png on disk.
// A missing refs directory yields an empty map.
func (l Layout) ScanReferences() (ReferenceMap, error) {
	entries, err := os.ReadDir(l.RefsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return ReferenceMap{}, nil
		}
		return nil, assetError("failed to list %s", l.RefsDir()).WithCause(err)
	}

	refs := make(ReferenceMap, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), refExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), refExt)
		refs[name] = l.RefPath(name)
	}
	return refs, nil
}

// ReferenceMap maps a character name to its saved reference image path.
type ReferenceMap map[string]string

// Names returns the character names in sorted order.
func (m ReferenceMap) Names() []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
