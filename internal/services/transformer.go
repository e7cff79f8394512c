package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultGenerativeURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel         = "gemini-3-pro-preview"
	defaultHTTPTimeout   = 30 * time.Second
)

// GeminiTransformer calls the hosted generative model's generateContent
// endpoint with a freeform prompt and a JSON response mime type.
type GeminiTransformer struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewGeminiTransformer creates a transformer client. Empty model or
// baseURL fall back to the defaults.
func NewGeminiTransformer(apiKey, model, baseURL string) *GeminiTransformer {
	if model == "" {
		model = defaultModel
	}
	if baseURL == "" {
		baseURL = defaultGenerativeURL
	}
	return &GeminiTransformer{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// buildPrompt assembles the transformation prompt from the tenant's CRM
// type, its schemas, the sample payload and the operator's instructions.
func buildPrompt(req TransformRequest) string {
	ingestion, _ := json.Marshal(req.IngestionSchema)
	output, _ := json.Marshal(req.OutputSchema)
	return fmt.Sprintf(`Act as the NexusAI Core Transformer.
INPUT DATA (%s): %s
INGESTION SCHEMA: %s
OUTPUT SCHEMA (FINAL): %s
INSTRUCTIONS: %s

Return a JSON document containing the transformation into the INGESTION SCHEMA and an example of the response in the OUTPUT SCHEMA.`,
		req.CRMType, req.SourceJSON, ingestion, output, req.Instructions)
}

// TransformPreview sends the prompt and returns the model's raw JSON text.
// The caller parses it for display only; nothing downstream acts on it.
func (t *GeminiTransformer) TransformPreview(ctx context.Context, req TransformRequest) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: buildPrompt(req)}}}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal transform request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", t.baseURL, t.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create transform request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", t.apiKey)

	resp, err := t.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("transform request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transform request failed: status code %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode transform response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "{}", nil
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
