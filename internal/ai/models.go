package ai

// Image is one validated upload, held in memory for the duration of a request.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Prediction struct {
	Filename   string  `json:"filename"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type Recipe struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Score        float64  `json:"score"`
	Matched      []string `json:"matched"`
	Missing      []string `json:"missing"`
	Instructions []string `json:"instructions"`
}

// AnalysisResult is the normalized output of one model invocation.
// Predictions always has one entry per input image. On the degraded path
// Error is set and RawResponse carries the unparsed model text.
type AnalysisResult struct {
	Predictions    []Prediction `json:"predictions"`
	Ingredients    []string     `json:"ingredients"`
	Recipes        []Recipe     `json:"recipes"`
	CandidateCount int          `json:"candidate_count"`
	Error          string       `json:"error,omitempty"`
	RawResponse    string       `json:"raw_response,omitempty"`
}
