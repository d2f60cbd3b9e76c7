// Package vlm produces natural-language descriptions of captured frames
// through a vision-language model.
package vlm

import (
	"context"

	"github.com/AnuragGaddu/Narrate/pkg/core/camera"
)

// NarrationPrompt is the instruction sent with every frame.
const NarrationPrompt = "Describe this image in one or two sentences for someone who cannot see it."

// Describer is the opaque describe(frame) -> text collaborator. It may be
// slow; callers bound it with a context deadline.
type Describer interface {
	// Name returns the backend identifier.
	Name() string

	// Describe returns a text description of the frame.
	Describe(ctx context.Context, frame *camera.Frame) (string, error)
}
