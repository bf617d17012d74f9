package trailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/trailerflow/types"
)

// CharacterDesign describes one named character and the prompt for its
// reference image.
type CharacterDesign struct {
	CharacterName         string `json:"character_name" yaml:"character_name"`
	ImageGenerationPrompt string `json:"image_generation_prompt" yaml:"image_generation_prompt"`
}

// Scene is one clip of the trailer.
type Scene struct {
	SceneNumber      int      `json:"scene_number" yaml:"scene_number"`
	SceneType        string   `json:"scene_type" yaml:"scene_type"`
	DurationSeconds  int      `json:"duration_seconds" yaml:"duration_seconds"`
	StartFramePrompt string   `json:"start_frame_prompt" yaml:"start_frame_prompt"`
	EndFramePrompt   string   `json:"end_frame_prompt" yaml:"end_frame_prompt"`
	VideoPrompt      string   `json:"video_prompt" yaml:"video_prompt"`
	ReferenceImages  []string `json:"reference_images" yaml:"reference_images"`
}

// Breakdown is the input document: characters first, then scenes, both in
// generation order.
type Breakdown struct {
	CharacterDesigns []CharacterDesign `json:"character_designs" yaml:"character_designs"`
	Scenes           []Scene           `json:"scenes" yaml:"scenes"`
}

// Format is the encoding of a breakdown document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the decoder from the file extension; anything that is
// not .yaml/.yml is read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadBreakdown reads and validates a breakdown file.
func LoadBreakdown(path string) (*Breakdown, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewErrorf(types.ErrInvalidInput, "failed to read breakdown %s", path).WithCause(err)
	}
	return ParseBreakdown(data, FormatForPath(path))
}

// ParseBreakdown decodes and validates a breakdown document.
func ParseBreakdown(data []byte, format Format) (*Breakdown, error) {
	var b Breakdown
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, types.NewError(types.ErrInvalidInput, "failed to decode yaml breakdown").WithCause(err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&b); err != nil {
			return nil, types.NewError(types.ErrInvalidInput, "failed to decode json breakdown").WithCause(err)
		}
	default:
		return nil, types.NewErrorf(types.ErrInvalidInput, "unsupported breakdown format %q", format)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks the breakdown once at the input boundary. Clip constraints
// (reference count, 8s duration) are left to video.ValidateClip.
func (b *Breakdown) Validate() error {
	var problems []string

	names := make(map[string]struct{}, len(b.CharacterDesigns))
	for i, d := range b.CharacterDesigns {
		if err := validateCharacterName(d.CharacterName); err != nil {
			problems = append(problems, fmt.Sprintf("character_designs[%d]: %v", i, err))
		} else if _, dup := names[d.CharacterName]; dup {
			problems = append(problems, fmt.Sprintf("character_designs[%d]: duplicate character %q", i, d.CharacterName))
		}
		names[d.CharacterName] = struct{}{}

		if strings.TrimSpace(d.ImageGenerationPrompt) == "" {
			problems = append(problems, fmt.Sprintf("character_designs[%d]: image_generation_prompt is required", i))
		}
	}

	numbers := make(map[int]struct{}, len(b.Scenes))
	for i, s := range b.Scenes {
		where := fmt.Sprintf("scenes[%d]", i)
		if s.SceneNumber < 0 {
			problems = append(problems, fmt.Sprintf("%s: scene_number must not be negative (got %d)", where, s.SceneNumber))
		} else if _, dup := numbers[s.SceneNumber]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate scene_number %d", where, s.SceneNumber))
		}
		numbers[s.SceneNumber] = struct{}{}

		if s.DurationSeconds <= 0 {
			problems = append(problems, fmt.Sprintf("%s: duration_seconds must be positive (got %d)", where, s.DurationSeconds))
		}
		for _, f := range []struct{ name, value string }{
			{"start_frame_prompt", s.StartFramePrompt},
			{"end_frame_prompt", s.EndFramePrompt},
			{"video_prompt", s.VideoPrompt},
		} {
			if strings.TrimSpace(f.value) == "" {
				problems = append(problems, fmt.Sprintf("%s: %s is required", where, f.name))
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return types.NewError(types.ErrInvalidInput, "invalid breakdown: "+strings.Join(problems, "; "))
}

// validateCharacterName keeps names usable as a single file name under refs/.
func validateCharacterName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("character_name is required")
	case name == "." || name == "..":
		return fmt.Errorf("character_name %q is not a valid file name", name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0):
		return fmt.Errorf("character_name %q must not contain path separators", name)
	}
	return nil
}
