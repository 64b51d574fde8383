package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

	defaultGeminiModel = "gemini-2.0-flash"
)

// GeminiClient calls the Vertex AI generateContent endpoint for a single
// project/location pair. Requests are synchronous, never streamed.
type GeminiClient struct {
	baseURL     string
	model       string
	tokenSource oauth2.TokenSource
	httpClient  *http.Client
}

func NewGeminiClient(ctx context.Context, project, location, model string) (*GeminiClient, error) {
	if project == "" {
		return nil, fmt.Errorf("missing Google Cloud project")
	}
	if location == "" {
		return nil, fmt.Errorf("missing Google Cloud location")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to build Google token source: %w", err)
	}

	return &GeminiClient{
		baseURL: fmt.Sprintf(
			"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models",
			location, project, location),
		model:       model,
		tokenSource: ts,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type geminiRequest struct {
	Contents         []geminiContent       `json:"contents"`
	GenerationConfig geminiGenConfig       `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting `json:"safetySettings"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// safetySettings blocks medium-and-above content in the four categories the
// relay enforces on every call.
func safetySettings() []geminiSafetySetting {
	categories := []string{
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_HARASSMENT",
	}

	settings := make([]geminiSafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, geminiSafetySetting{
			Category:  c,
			Threshold: "BLOCK_MEDIUM_AND_ABOVE",
		})
	}
	return settings
}

// Generate submits the prompt plus one inline attachment per image and
// returns the model's raw text. No retries: any provider failure surfaces
// verbatim to the caller.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, images []Image) (string, error) {
	parts := make([]geminiPart, 0, len(images)+1)
	parts = append(parts, geminiPart{Text: prompt})
	for _, img := range images {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: img.ContentType,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: parts},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.4,
			TopP:            0.95,
			MaxOutputTokens: 8192,
		},
		SafetySettings: safetySettings(),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.tokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token: %w", err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if geminiResp.Error != nil {
		return "", fmt.Errorf("Gemini API error: %s", geminiResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API returned status %d: %s", resp.StatusCode, string(body))
	}

	if len(geminiResp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in Gemini response")
	}

	candidate := geminiResp.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason != "" {
			return "", fmt.Errorf("Gemini returned no content (finish reason: %s)", candidate.FinishReason)
		}
		return "", fmt.Errorf("empty Gemini response")
	}

	return candidate.Content.Parts[0].Text, nil
}
