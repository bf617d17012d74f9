// Package video provides the image-conditioned video generation adapter.
package video

import "context"

// Constraints of reference-conditioned generation.
const (
	// MaxReferenceImages is the largest number of reference images per clip.
	MaxReferenceImages = 3
	// ReferenceClipSeconds is the only duration accepted with reference images.
	ReferenceClipSeconds = 8
	// DefaultAspectRatio is used when the request leaves AspectRatio empty.
	DefaultAspectRatio = "16:9"
	// PersonGenerationAllowAdult is sent when reference images are present.
	PersonGenerationAllowAdult = "allow_adult"
)

// GenerateRequest represents one clip generation request.
type GenerateRequest struct {
	Prompt          string   `json:"prompt"`
	NegativePrompt  string   `json:"negative_prompt,omitempty"`
	StartFrame      []byte   `json:"-"`
	EndFrame        []byte   `json:"-"`
	DurationSeconds int      `json:"duration_seconds"`
	ReferenceImages [][]byte `json:"-"`
	AspectRatio     string   `json:"aspect_ratio,omitempty"` // 16:9 when empty
}

// Provider defines the video generation provider interface.
type Provider interface {
	// GenerateVideo validates req, runs the generation job to completion and
	// returns the raw video bytes.
	GenerateVideo(ctx context.Context, req *GenerateRequest) ([]byte, error)

	// Name returns the provider name.
	Name() string
}
