package video

import (
	"fmt"
	"strings"

	"github.com/BaSui01/trailerflow/types"
)

// ValidateClip checks the reference-image constraints of a clip. It is the
// single place the rules live: the adapter, the scene generator and the
// offline check all call it. Every violated rule is reported, each with the
// actual value.
func ValidateClip(durationSeconds, referenceCount int) error {
	var problems []string
	if referenceCount > 0 && durationSeconds != ReferenceClipSeconds {
		problems = append(problems, fmtDuration(durationSeconds))
	}
	if referenceCount > MaxReferenceImages {
		problems = append(problems, fmtCount(referenceCount))
	}
	if len(problems) == 0 {
		return nil
	}
	return types.NewError(types.ErrValidation, strings.Join(problems, "; "))
}

// Validate checks the whole request before any network call.
func (r *GenerateRequest) Validate() error {
	if r == nil {
		return types.NewError(types.ErrValidation, "video request is nil")
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return types.NewError(types.ErrValidation, "video prompt is required")
	}
	if r.DurationSeconds <= 0 {
		return types.NewErrorf(types.ErrValidation, "duration must be positive (got %ds)", r.DurationSeconds)
	}
	return ValidateClip(r.DurationSeconds, len(r.ReferenceImages))
}

func fmtDuration(got int) string {
	return fmt.Sprintf("duration must be %ds when using reference images (got %ds)", ReferenceClipSeconds, got)
}

func fmtCount(got int) string {
	return fmt.Sprintf("at most %d reference images allowed (got %d)", MaxReferenceImages, got)
}
