package trailer

import (
	"context"
	"sync"

	"github.com/BaSui01/trailerflow/llm/image"
	"github.com/BaSui01/trailerflow/llm/video"
	"github.com/BaSui01/trailerflow/types"
)

var (
	_ image.Provider = (*stubImages)(nil)
	_ video.Provider = (*stubVideos)(nil)
)

// stubImages returns "img:<prompt>" for every prompt unless the prompt is in
// fail.
type stubImages struct {
	mu      sync.Mutex
	prompts []string
	fail    map[string]error
}

func (s *stubImages) Name() string { return "stub-image" }

func (s *stubImages) GenerateImage(_ context.Context, prompt string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if err, ok := s.fail[prompt]; ok {
		return nil, err
	}
	return []byte("img:" + prompt), nil
}

func (s *stubImages) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// stubVideos validates like the real adapter and returns "clip:<prompt>".
type stubVideos struct {
	requests []*video.GenerateRequest
	fail     map[string]error
}

func (s *stubVideos) Name() string { return "stub-video" }

func (s *stubVideos) GenerateVideo(_ context.Context, req *video.GenerateRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.requests = append(s.requests, req)
	if err, ok := s.fail[req.Prompt]; ok {
		return nil, err
	}
	return []byte("clip:" + req.Prompt), nil
}

func providerFailure(msg string) error {
	return types.NewError(types.ErrProvider, msg).WithProvider("stub")
}

func twoCharacterBreakdown(duration int) *Breakdown {
	return &Breakdown{
		CharacterDesigns: []CharacterDesign{
			{CharacterName: "Hero", ImageGenerationPrompt: "a brave knight"},
			{CharacterName: "Villain", ImageGenerationPrompt: "a dark sorcerer"},
		},
		Scenes: []Scene{{
			SceneNumber:      1,
			SceneType:        "confrontation",
			DurationSeconds:  duration,
			StartFramePrompt: "knight at the gate",
			EndFramePrompt:   "sorcerer raises staff",
			VideoPrompt:      "the knight faces the sorcerer",
			ReferenceImages:  []string{"Hero", "Villain"},
		}},
	}
}
