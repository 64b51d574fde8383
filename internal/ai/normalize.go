package ai

import (
	"encoding/json"
	"sort"
	"strings"
)

// parseFailureMarker is the error string set on degraded results.
const parseFailureMarker = "failed to parse model response"

type rawAnalysis struct {
	Predictions    []Prediction `json:"predictions"`
	Ingredients    []string     `json:"ingredients"`
	Recipes        []Recipe     `json:"recipes"`
	CandidateCount *int         `json:"candidate_count"`
}

// Normalize converts the model's raw text into a well-formed AnalysisResult.
// It never fails: text that does not parse as JSON becomes a degraded result
// with one unknown prediction per input filename and the raw text attached
// for diagnostics.
func Normalize(rawText string, filenames []string) *AnalysisResult {
	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(stripFence(rawText)), &parsed); err != nil {
		return degradedResult(rawText, filenames)
	}

	result := &AnalysisResult{
		Predictions: parsed.Predictions,
		Ingredients: dedupe(parsed.Ingredients),
		Recipes:     parsed.Recipes,
	}
	if result.Predictions == nil {
		result.Predictions = []Prediction{}
	}
	if result.Recipes == nil {
		result.Recipes = []Recipe{}
	}

	if parsed.CandidateCount != nil {
		result.CandidateCount = *parsed.CandidateCount
	} else {
		result.CandidateCount = len(result.Recipes)
	}

	// The model is instructed to rank recipes, but its ordering is not
	// trusted. Stable sort leaves an already-ordered list untouched.
	sort.SliceStable(result.Recipes, func(i, j int) bool {
		return result.Recipes[i].Score > result.Recipes[j].Score
	})

	// The caller's filenames win over whatever the model echoed back.
	// Predictions beyond the input batch keep the model's value.
	for i := range result.Predictions {
		if i < len(filenames) {
			result.Predictions[i].Filename = filenames[i]
		}
	}

	return result
}

func degradedResult(rawText string, filenames []string) *AnalysisResult {
	predictions := make([]Prediction, 0, len(filenames))
	for _, name := range filenames {
		predictions = append(predictions, Prediction{
			Filename:   name,
			Label:      "unknown",
			Confidence: 0.0,
		})
	}

	return &AnalysisResult{
		Predictions:    predictions,
		Ingredients:    []string{},
		Recipes:        []Recipe{},
		CandidateCount: 0,
		Error:          parseFailureMarker,
		RawResponse:    rawText,
	}
}

// stripFence removes a single surrounding triple-backtick fence, with or
// without a language tag, from text like "```json\n{...}\n```".
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
