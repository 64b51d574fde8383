package ai

import (
	"context"
	"fmt"
)

// RecipeAnalyzer turns a validated image batch into a normalized
// AnalysisResult.
type RecipeAnalyzer interface {
	Analyze(ctx context.Context, images []Image) (*AnalysisResult, error)
}

// ModelClient is the generative model behind the analyzer. Implemented by
// GeminiClient; tests substitute a mock.
type ModelClient interface {
	Generate(ctx context.Context, prompt string, images []Image) (string, error)
}

type RecipeService struct {
	client ModelClient
}

func NewRecipeService(client ModelClient) *RecipeService {
	return &RecipeService{client: client}
}

// Analyze invokes the model once and normalizes its raw text. A model
// failure is an error; unparseable model output is not — Normalize absorbs
// it into a degraded result.
func (s *RecipeService) Analyze(ctx context.Context, images []Image) (*AnalysisResult, error) {
	raw, err := s.client.Generate(ctx, recipePrompt, images)
	if err != nil {
		return nil, fmt.Errorf("model invocation failed: %w", err)
	}

	filenames := make([]string, len(images))
	for i, img := range images {
		filenames[i] = img.Filename
	}

	return Normalize(raw, filenames), nil
}
