package trailer

import (
	"fmt"

	"github.com/BaSui01/trailerflow/llm/video"
	"github.com/BaSui01/trailerflow/types"
)

// Problem is one offline finding about a scene.
type Problem struct {
	SceneNumber int
	Err         error
}

func (p Problem) String() string {
	return fmt.Sprintf("scene %d: %v", p.SceneNumber, p.Err)
}

// Check reports, without any network call, every scene that the video
// provider would reject or that references a character the breakdown does
// not design.
func Check(b *Breakdown) []Problem {
	designed := make(map[string]struct{}, len(b.CharacterDesigns))
	for _, d := range b.CharacterDesigns {
		designed[d.CharacterName] = struct{}{}
	}

	var problems []Problem
	for _, s := range b.Scenes {
		for _, name := range s.ReferenceImages {
			if _, ok := designed[name]; !ok {
				problems = append(problems, Problem{
					SceneNumber: s.SceneNumber,
					Err:         types.NewErrorf(types.ErrLookup, "no character design for %q", name),
				})
			}
		}
		if err := video.ValidateClip(s.DurationSeconds, len(s.ReferenceImages)); err != nil {
			problems = append(problems, Problem{SceneNumber: s.SceneNumber, Err: err})
		}
	}
	return problems
}
