package trailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/trailerflow/types"
)

func TestCheck(t *testing.T) {
	assert.Empty(t, Check(twoCharacterBreakdown(8)))

	b := twoCharacterBreakdown(5)
	b.Scenes = append(b.Scenes,
		Scene{SceneNumber: 2, DurationSeconds: 8, ReferenceImages: []string{"Hero", "Villain", "Hero", "Villain"}},
		Scene{SceneNumber: 3, DurationSeconds: 8, ReferenceImages: []string{"Ghost"}},
		Scene{SceneNumber: 4, DurationSeconds: 3},
	)

	problems := Check(b)
	require.Len(t, problems, 3)

	assert.Equal(t, 1, problems[0].SceneNumber)
	assert.True(t, types.IsValidation(problems[0].Err))
	assert.Contains(t, problems[0].String(), "got 5s")

	assert.Equal(t, 2, problems[1].SceneNumber)
	assert.Contains(t, problems[1].Err.Error(), "got 4")

	assert.Equal(t, 3, problems[2].SceneNumber)
	assert.True(t, types.IsLookup(problems[2].Err))
	assert.Contains(t, problems[2].String(), `"Ghost"`)
}
