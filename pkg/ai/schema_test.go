package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriyield/entities"
	"agriyield/pkg/apperr"
)

const validPrediction = `{
  "predictedYield": 4.1,
  "yieldUnit": "tons/hectare",
  "confidenceScore": 0.8,
  "summary": "Good season expected.",
  "weatherImpactAnalysis": "Mild temperatures favour grain fill.",
  "recommendations": [
    {"title": "Split nitrogen", "description": "Apply in two doses.", "impact": "High", "potentialYieldIncrease": 8}
  ],
  "riskFactors": ["Rust"]
}`

func TestPredictionSchemaShape(t *testing.T) {
	s, err := PredictionSchema()
	require.NoError(t, err)
	assert.Equal(t, "object", s.Type)
	assert.ElementsMatch(t, []string{
		"predictedYield", "yieldUnit", "confidenceScore", "summary",
		"weatherImpactAnalysis", "recommendations", "riskFactors",
	}, s.Required)

	recs := s.Properties["recommendations"]
	require.NotNil(t, recs)
	assert.Equal(t, "array", recs.Type)
	assert.Empty(t, recs.Types)
	impact := recs.Items.Properties["impact"]
	assert.Equal(t, []any{"High", "Medium", "Low"}, impact.Enum)
	assert.Equal(t, 1.0, *s.Properties["confidenceScore"].Maximum)
	assert.Equal(t, "Predicted yield in tons per hectare.", s.Properties["predictedYield"].Description)
}

func TestCropInfoSchemaShape(t *testing.T) {
	s, err := CropInfoSchema()
	require.NoError(t, err)
	assert.Equal(t, "CropInfo", s.Title)
	ideal := s.Properties["idealConditions"]
	require.NotNil(t, ideal)
	assert.ElementsMatch(t, []string{"soilType", "temperatureRange", "annualRainfall"}, ideal.Required)
	assert.Equal(t, "array", ideal.Properties["soilType"].Type)
}

func TestDecodeValidPrediction(t *testing.T) {
	s, err := PredictionSchema()
	require.NoError(t, err)

	res, err := Decode[entities.PredictionResult]([]byte("  "+validPrediction+"\n"), s)
	require.NoError(t, err)
	assert.Equal(t, 4.1, res.PredictedYield)
	assert.Equal(t, entities.ImpactHigh, res.Recommendations[0].Impact)
	assert.Equal(t, []string{"Rust"}, res.RiskFactors)
}

func TestDecodeStripsCodeFence(t *testing.T) {
	s, _ := PredictionSchema()
	res, err := Decode[entities.PredictionResult]([]byte("```json\n"+validPrediction+"\n```"), s)
	require.NoError(t, err)
	assert.Equal(t, "tons/hectare", res.YieldUnit)
}

func TestDecodeRejectsInvalidOutput(t *testing.T) {
	s, _ := PredictionSchema()
	cases := map[string]string{
		"not json":          `Sure! Here is your prediction.`,
		"missing field":     `{"predictedYield": 4}`,
		"bad impact":        `{"predictedYield":4,"yieldUnit":"t/ha","confidenceScore":0.5,"summary":"s","weatherImpactAnalysis":"w","recommendations":[{"title":"t","description":"d","impact":"Extreme","potentialYieldIncrease":1}],"riskFactors":[]}`,
		"confidence > 1":    `{"predictedYield":4,"yieldUnit":"t/ha","confidenceScore":1.5,"summary":"s","weatherImpactAnalysis":"w","recommendations":[],"riskFactors":[]}`,
		"negative increase": `{"predictedYield":4,"yieldUnit":"t/ha","confidenceScore":0.5,"summary":"s","weatherImpactAnalysis":"w","recommendations":[{"title":"t","description":"d","impact":"Low","potentialYieldIncrease":-3}],"riskFactors":[]}`,
		"wrong type":        `{"predictedYield":"four","yieldUnit":"t/ha","confidenceScore":0.5,"summary":"s","weatherImpactAnalysis":"w","recommendations":[],"riskFactors":[]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := Decode[entities.PredictionResult]([]byte(raw), s)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, apperr.ErrPredictionParse)
		})
	}
}
