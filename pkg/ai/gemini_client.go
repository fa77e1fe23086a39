package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"agriyield/pkg/apperr"
	"agriyield/pkg/httpx"
)

const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel    = "gemini-2.5-flash"
)

type gemini struct {
	endpoint string
	key      string
	model    string
	client   *httpx.Client
}

func NewGemini(endpoint, key, model string, client *httpx.Client) Generator {
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if client == nil {
		client = httpx.New(nil, "gemini", "")
	}
	return &gemini{endpoint: strings.TrimRight(endpoint, "/"), key: key, model: model, client: client}
}

func (g *gemini) Name() string { return "gemini:" + g.model }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		ResponseMimeType   string             `json:"responseMimeType"`
		ResponseJSONSchema *jsonschema.Schema `json:"responseJsonSchema,omitempty"`
		Temperature        float64            `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *gemini) Generate(ctx context.Context, prompt, systemInstruction string, schema *jsonschema.Schema) ([]byte, error) {
	var body geminiRequest
	if systemInstruction != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}}
	}
	body.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}}
	body.GenerationConfig.ResponseMimeType = "application/json"
	body.GenerationConfig.ResponseJSONSchema = schema
	body.GenerationConfig.Temperature = 0.2

	b, err := json.Marshal(body)
	if err != nil {
		return nil, apperr.PredictionService("encode request", err)
	}
	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.endpoint, url.PathEscape(g.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return nil, apperr.PredictionService("create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.key)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperr.PredictionService("gemini request failed", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.PredictionService("read response", err)
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperr.PredictionService(fmt.Sprintf("gemini returned status %d with an unreadable body", resp.StatusCode), err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return nil, apperr.PredictionService(fmt.Sprintf("gemini returned status %d: %s", resp.StatusCode, msg), nil)
	}
	if out.PromptFeedback.BlockReason != "" {
		return nil, apperr.PredictionService("prompt blocked: "+out.PromptFeedback.BlockReason, nil)
	}
	if len(out.Candidates) == 0 {
		return nil, apperr.PredictionService("gemini returned no candidates", nil)
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, apperr.PredictionService("gemini returned an empty response", nil)
	}
	return []byte(text), nil
}
