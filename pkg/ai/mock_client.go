package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"agriyield/entities"
	"agriyield/pkg/apperr"
)

// mockClient answers from the prompt alone so the server runs without an API key.
type mockClient struct{}

func NewMock() Generator { return &mockClient{} }

func (m *mockClient) Name() string { return ProviderMock }

var (
	mockCropRe     = regexp.MustCompile(`(?m)^\s*- Crop Type: (.+)$`)
	mockRainRe     = regexp.MustCompile(`(?m)^\s*- Annual Rainfall: ([-\d.]+) mm`)
	mockPesticide  = regexp.MustCompile(`(?m)^\s*- Pesticide Usage: Yes`)
	mockProfileRe  = regexp.MustCompile(`profile for the crop: ([^.]+)\.`)
	mockBaseYields = map[string]float64{
		"wheat": 3.5, "maize (corn)": 5.8, "rice": 4.6, "soybeans": 2.8, "potatoes": 20,
		"cotton": 2.2, "sugarcane": 70, "barley": 3.1, "sorghum": 3.2, "tomatoes": 35,
	}
)

func (m *mockClient) Generate(ctx context.Context, prompt, systemInstruction string, schema *jsonschema.Schema) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.PredictionService("canceled", err)
	}
	title := ""
	if schema != nil {
		title = schema.Title
	}
	switch title {
	case "CropInfo":
		return json.Marshal(mockCropInfo(prompt))
	case "PredictionResult":
		return json.Marshal(mockPrediction(prompt))
	default:
		return nil, apperr.PredictionService(fmt.Sprintf("mock has no answer for schema %q", title), nil)
	}
}

func mockPrediction(prompt string) entities.PredictionResult {
	crop := "Crop"
	if m := mockCropRe.FindStringSubmatch(prompt); m != nil {
		crop = strings.TrimSpace(m[1])
	}
	yield, ok := mockBaseYields[strings.ToLower(crop)]
	if !ok {
		yield = 3
	}
	rain := 0.0
	if m := mockRainRe.FindStringSubmatch(prompt); m != nil {
		rain, _ = strconv.ParseFloat(m[1], 64)
	}
	risks := []string{"Pest pressure during flowering"}
	if rain < 300 {
		yield *= 0.85
		risks = append(risks, "Low annual rainfall")
	}
	if mockPesticide.MatchString(prompt) {
		yield *= 1.05
	}

	impact := "This prediction does not account for short-term weather events because no forecast was provided."
	if strings.Contains(prompt, "Weather Forecast Data:") {
		impact = "The 5-day forecast was considered. "
		lower := strings.ToLower(prompt)
		switch {
		case strings.Contains(lower, "storm"):
			impact += "Storms may cause lodging and waterlogging; ensure drainage."
			risks = append(risks, "Storm damage")
		case strings.Contains(lower, "rain"):
			impact += "Expected rain supports soil moisture but raises fungal disease risk."
		default:
			impact += "Conditions look stable with no major short-term risk."
		}
	}

	return entities.PredictionResult{
		PredictedYield:        float64(int(yield*100+0.5)) / 100,
		YieldUnit:             "tons/hectare",
		ConfidenceScore:       0.72,
		Summary:               fmt.Sprintf("Estimated %s yield based on the submitted farm data (mock).", crop),
		WeatherImpactAnalysis: impact,
		Recommendations: []entities.Recommendation{
			{Title: "Soil testing", Description: "Test soil nutrients before the next fertilizer application.", Impact: entities.ImpactMedium, PotentialYieldIncrease: 5},
			{Title: "Irrigation scheduling", Description: "Match irrigation to crop stage and forecast rainfall.", Impact: entities.ImpactHigh, PotentialYieldIncrease: 10},
		},
		RiskFactors: risks,
	}
}

func mockCropInfo(prompt string) entities.CropInfo {
	name := "Crop"
	if m := mockProfileRe.FindStringSubmatch(prompt); m != nil {
		name = strings.TrimSpace(m[1])
	}
	return entities.CropInfo{
		CropName:    name,
		Description: fmt.Sprintf("%s is a widely cultivated crop (mock profile).", name),
		IdealConditions: entities.IdealConditions{
			SoilType:         []string{"Loamy", "Well-drained"},
			TemperatureRange: "15-25°C",
			AnnualRainfall:   "600-1200 mm",
		},
		CommonPests:  []string{"Aphids", "Cutworms"},
		GrowingCycle: "90-120 days",
	}
}
