// Package ai wraps the structured-generation backends. Every backend returns
// raw JSON text that is expected to match the schema it was given; callers
// decode and validate it with Decode.
package ai

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt, systemInstruction string, schema *jsonschema.Schema) ([]byte, error)
}

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)
