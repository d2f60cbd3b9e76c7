package vlm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/AnuragGaddu/Narrate/pkg/core"
	"github.com/AnuragGaddu/Narrate/pkg/core/camera"
)

// DefaultGeminiModel is the model used when none is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

const maxNarrationTokens = 150

// Gemini describes frames with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini describer. model may be empty to use the
// default.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, core.NewError(core.ErrInference, "gemini api key not configured")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Name returns the backend identifier.
func (g *Gemini) Name() string {
	return "gemini"
}

// Describe sends the frame inline with the narration prompt.
func (g *Gemini) Describe(ctx context.Context, frame *camera.Frame) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(frame.JPEG, "image/jpeg"),
			genai.NewPartFromText(NarrationPrompt),
		}, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: maxNarrationTokens,
	})
	if err != nil {
		return "", core.NewErrorWithDetail(core.ErrInference, "gemini inference failed", err.Error())
	}
	return strings.TrimSpace(resp.Text()), nil
}
