package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"agriyield/pkg/apperr"
	"agriyield/pkg/httpx"
)

type openAI struct {
	endpoint string
	key      string
	model    string
	client   *httpx.Client
}

// NewOpenAI talks to any OpenAI-compatible /v1/chat/completions endpoint.
func NewOpenAI(endpoint, key, model string, client *httpx.Client) Generator {
	if client == nil {
		client = httpx.New(nil, "openai", "")
	}
	return &openAI{endpoint: strings.TrimRight(endpoint, "/"), key: key, model: model, client: client}
}

func (c *openAI) Name() string { return "openai:" + c.model }

func (c *openAI) Generate(ctx context.Context, prompt, systemInstruction string, schema *jsonschema.Schema) ([]byte, error) {
	name := "response"
	if schema != nil && schema.Title != "" {
		name = schema.Title
	}
	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemInstruction},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.2,
		"response_format": map[string]any{
			"type":        "json_schema",
			"json_schema": map[string]any{"name": name, "schema": schema},
		},
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperr.PredictionService("encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, apperr.PredictionService("create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.PredictionService("chat completion request failed", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.PredictionService("read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.PredictionService(fmt.Sprintf("chat completion returned status %d", resp.StatusCode), nil)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperr.PredictionService("decode chat completion", err)
	}
	if len(out.Choices) == 0 {
		return nil, apperr.PredictionService("no choices", nil)
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return nil, apperr.PredictionService("empty completion", nil)
	}
	return []byte(content), nil
}
