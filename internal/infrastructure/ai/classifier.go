// Package ai implements the complaint classifier against a Gemini-style
// generative text API. Callers own the fallback: any error here degrades to
// the safe default label at the service layer.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/campuscare/campuscare/internal/core/ports"
)

// Config captures the classifier endpoint settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Classifier struct {
	apiKey string
	model  string
	http   *resty.Client
}

func New(cfg Config) *Classifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	return &Classifier{
		apiKey: cfg.APIKey,
		model:  model,
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

const promptTemplate = `Analyze the following campus infrastructure complaint and provide a structured JSON response.
Complaint: %q

Identify:
1. Category: One of (Electrical, Plumbing, Network, Furniture, HVAC, Safety, Other).
2. Priority: One of (LOW, MEDIUM, HIGH, CRITICAL). Use CRITICAL for immediate hazards like exposed wires or major floods.
3. Summary: A short 5-10 word summary.
4. IsHazard: Boolean flag if this presents a danger to students.

Response Format (Strict JSON):
{"category": "string", "priority": "LOW" | "MEDIUM" | "HIGH" | "CRITICAL", "summary": "string", "isHazard": boolean}`

// jsonObjectRe strips markdown fences the model sometimes wraps around the
// JSON body.
var jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

// Classify sends the complaint text to the model and parses its verdict.
func (c *Classifier) Classify(ctx context.Context, text string) (ports.Analysis, error) {
	req := generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: fmt.Sprintf(promptTemplate, text)}}},
		},
	}

	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(req).
		SetResult(&out).
		SetPathParam("model", c.model).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return ports.Analysis{}, fmt.Errorf("classifier: %w", err)
	}
	if resp.IsError() {
		return ports.Analysis{}, fmt.Errorf("classifier: status %d", resp.StatusCode())
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return ports.Analysis{}, fmt.Errorf("classifier: empty response")
	}

	return parseAnalysis(out.Candidates[0].Content.Parts[0].Text)
}

// parseAnalysis extracts the JSON object from the model's text and
// validates the priority against the known set.
func parseAnalysis(text string) (ports.Analysis, error) {
	raw := jsonObjectRe.FindString(text)
	if raw == "" {
		return ports.Analysis{}, fmt.Errorf("classifier: no JSON object in response")
	}

	var analysis ports.Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return ports.Analysis{}, fmt.Errorf("classifier: parse response: %w", err)
	}

	switch analysis.Priority {
	case "LOW", "MEDIUM", "HIGH", "CRITICAL":
	default:
		return ports.Analysis{}, fmt.Errorf("classifier: unknown priority %q", analysis.Priority)
	}
	if analysis.Category == "" {
		return ports.Analysis{}, fmt.Errorf("classifier: missing category")
	}
	return analysis, nil
}
