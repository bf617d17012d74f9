package trailer

import (
	"encoding/json"
	"time"

	"github.com/BaSui01/trailerflow/types"
)

// Scene outcomes recorded in the manifest.
const (
	SceneStatusOK      = "ok"
	SceneStatusFailed  = "failed"
	SceneStatusSkipped = "skipped"
)

// Manifest summarises one run. It is written to manifest.json under the
// output root.
type Manifest struct {
	RunID             string             `json:"run_id"`
	Mode              string             `json:"mode"`
	OutputRoot        string             `json:"output_root"`
	StartedAt         time.Time          `json:"started_at"`
	FinishedAt        time.Time          `json:"finished_at"`
	References        ReferenceMap       `json:"references"`
	CharacterFailures []CharacterFailure `json:"character_failures,omitempty"`
	Scenes            []SceneRecord      `json:"scenes"`
}

// CharacterFailure records a character whose reference image could not be made.
type CharacterFailure struct {
	CharacterName string          `json:"character_name"`
	Code          types.ErrorCode `json:"code,omitempty"`
	Error         string          `json:"error"`
}

// SceneRecord is the outcome of one scene.
type SceneRecord struct {
	SceneNumber int             `json:"scene_number"`
	Status      string          `json:"status"`
	Path        string          `json:"path,omitempty"`
	Code        types.ErrorCode `json:"code,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// ScenePaths returns the clip paths of successful scenes, in order.
func (m *Manifest) ScenePaths() []string {
	var paths []string
	for _, s := range m.Scenes {
		if s.Status == SceneStatusOK {
			paths = append(paths, s.Path)
		}
	}
	return paths
}

func (m *Manifest) addScene(number int, path string) {
	m.Scenes = append(m.Scenes, SceneRecord{SceneNumber: number, Status: SceneStatusOK, Path: path})
}

func (m *Manifest) addSceneFailure(number int, status string, err error) {
	m.Scenes = append(m.Scenes, SceneRecord{
		SceneNumber: number,
		Status:      status,
		Code:        types.GetErrorCode(err),
		Error:       err.Error(),
	})
}

func (m *Manifest) addCharacterFailure(name string, err error) {
	m.CharacterFailures = append(m.CharacterFailures, CharacterFailure{
		CharacterName: name,
		Code:          types.GetErrorCode(err),
		Error:         err.Error(),
	})
}

// Marshal encodes the manifest as indented JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ReadManifest decodes a manifest written by a previous run.
func ReadManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, types.NewError(types.ErrInvalidInput, "failed to decode manifest").WithCause(err)
	}
	return &m, nil
}
