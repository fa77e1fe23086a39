package ai

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/mitchellh/mapstructure"

	"agriyield/entities"
	"agriyield/pkg/apperr"
)

var (
	predictionSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
		s, err := jsonschema.For[entities.PredictionResult](nil)
		if err != nil {
			return nil, err
		}
		s.Title = "PredictionResult"
		tidy(s)
		if c := s.Properties["confidenceScore"]; c != nil {
			c.Minimum, c.Maximum = ptr(0.0), ptr(1.0)
		}
		if recs := s.Properties["recommendations"]; recs != nil && recs.Items != nil {
			item := recs.Items
			if imp := item.Properties["impact"]; imp != nil {
				imp.Enum = []any{string(entities.ImpactHigh), string(entities.ImpactMedium), string(entities.ImpactLow)}
			}
			if inc := item.Properties["potentialYieldIncrease"]; inc != nil {
				inc.Minimum = ptr(0.0)
			}
		}
		return s, nil
	})

	cropInfoSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
		s, err := jsonschema.For[entities.CropInfo](nil)
		if err != nil {
			return nil, err
		}
		s.Title = "CropInfo"
		tidy(s)
		return s, nil
	})
)

// PredictionSchema is the response schema for yield predictions.
func PredictionSchema() (*jsonschema.Schema, error) { return predictionSchema() }

// CropInfoSchema is the response schema for crop profiles.
func CropInfoSchema() (*jsonschema.Schema, error) { return cropInfoSchema() }

// tidy rewrites the reflected schema into the subset generation backends
// accept: plain "array" types instead of ["null","array"] and no
// additionalProperties.
func tidy(s *jsonschema.Schema) {
	if s == nil {
		return
	}
	if len(s.Types) > 0 {
		for _, t := range s.Types {
			if t != "null" {
				s.Type = t
			}
		}
		s.Types = nil
	}
	s.AdditionalProperties = nil
	for _, p := range s.Properties {
		tidy(p)
	}
	tidy(s.Items)
}

func ptr[T any](v T) *T { return &v }

// Decode parses raw model output, validates it against schema and maps it into T.
// Anything that is not a schema-valid JSON document is a PredictionParse error.
func Decode[T any](raw []byte, schema *jsonschema.Schema) (*T, error) {
	raw = stripFence(bytes.TrimSpace(raw))
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, apperr.PredictionParse("model output is not valid JSON", err)
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, apperr.PredictionParse("resolve schema", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return nil, apperr.PredictionParse("model output does not match schema", err)
	}

	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: &out})
	if err != nil {
		return nil, apperr.PredictionParse("build decoder", err)
	}
	if err := dec.Decode(instance); err != nil {
		return nil, apperr.PredictionParse("map model output", err)
	}
	return &out, nil
}

// stripFence removes a surrounding ```json fence some models add despite the mime type.
func stripFence(b []byte) []byte {
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = bytes.TrimPrefix(b, []byte("```"))
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[i+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}
