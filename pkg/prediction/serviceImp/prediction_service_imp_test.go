package serviceImp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriyield/entities"
	"agriyield/pkg/ai"
	"agriyield/pkg/apperr"
	"agriyield/pkg/history/repositoryImp"
	historyImp "agriyield/pkg/history/serviceImp"
)

type recordingGen struct {
	out    []byte
	err    error
	prompt string
	system string
	schema *jsonschema.Schema
	calls  int
}

func (g *recordingGen) Name() string { return "recording" }

func (g *recordingGen) Generate(ctx context.Context, prompt, system string, schema *jsonschema.Schema) ([]byte, error) {
	g.calls++
	g.prompt, g.system, g.schema = prompt, system, schema
	return g.out, g.err
}

type stubWeather struct {
	snap *entities.WeatherSnapshot
	err  error
	got  entities.Location
}

func (w *stubWeather) Snapshot(ctx context.Context, loc entities.Location) (*entities.WeatherSnapshot, error) {
	w.got = loc
	return w.snap, w.err
}

type stubRefs struct{ hits []entities.KBHit }

func (r stubRefs) Search(ctx context.Context, q string, k int) ([]entities.KBHit, error) {
	if len(r.hits) > k {
		return r.hits[:k], nil
	}
	return r.hits, nil
}

const goodResult = `{"predictedYield":4.2,"yieldUnit":"tons/hectare","confidenceScore":0.8,"summary":"ok",
"weatherImpactAnalysis":"none","recommendations":[{"title":"t","description":"d","impact":"Low","potentialYieldIncrease":2}],"riskFactors":["hail"]}`

func validForm() entities.PredictionFormData {
	return entities.PredictionFormData{
		CropType: "Wheat", Location: "Lat: 48.8566, Lng: 2.3522", SoilType: "Loamy",
		Rainfall: 650, Temperature: 18.5, PesticideUsage: true, FertilizerType: "NPK Blend", Area: 12,
	}
}

func snapshot() *entities.WeatherSnapshot {
	return &entities.WeatherSnapshot{
		Current: entities.CurrentConditions{Temp: 21, Description: "clear sky"},
		Forecast: []entities.ForecastDay{
			{Date: "Mon, Jun 3", TempMax: 24, TempMin: 12, Description: "clear sky"},
			{Date: "Tue, Jun 4", TempMax: 19, TempMin: 9, Description: "light rain"},
		},
	}
}

func TestPredictWithSnapshot(t *testing.T) {
	gen := &recordingGen{out: []byte(goodResult)}
	hist := historyImp.NewHistoryService(repositoryImp.NewMemory())
	svc := NewPredictionService(Deps{Generator: gen, History: hist})

	res, err := svc.Predict(context.Background(), "u1", validForm(), snapshot())
	require.NoError(t, err)
	assert.Equal(t, 4.2, res.PredictedYield)

	assert.Contains(t, gen.prompt, "- Crop Type: Wheat")
	assert.Contains(t, gen.prompt, "- Pesticide Usage: Yes")
	assert.Contains(t, gen.prompt, "- Annual Rainfall: 650 mm")
	assert.Contains(t, gen.prompt, "- Average Temperature: 18.5°C")
	assert.Contains(t, gen.prompt, "- Cultivation Area: 12 hectares")
	assert.Contains(t, gen.prompt, "- Current: 21°C, clear sky")
	assert.Contains(t, gen.prompt, "- Tue, Jun 4: High 19°C, Low 9°C, light rain")
	assert.Contains(t, gen.prompt, "Your response MUST include a 'weatherImpactAnalysis' section.")
	assert.NotContains(t, gen.prompt, "Reference notes")
	assert.Equal(t, predictionSystemInstruction, gen.system)
	assert.Equal(t, "PredictionResult", gen.schema.Title)

	list := hist.List("u1")
	require.Len(t, list, 1)
	assert.Equal(t, "Wheat", list[0].FormData.CropType)
	assert.Equal(t, 4.2, list[0].Result.PredictedYield)
}

func TestPredictWithoutSnapshot(t *testing.T) {
	gen := &recordingGen{out: []byte(goodResult)}
	svc := NewPredictionService(Deps{Generator: gen})

	_, err := svc.Predict(context.Background(), "u1", validForm(), nil)
	require.NoError(t, err)
	assert.NotContains(t, gen.prompt, "Weather Forecast Data")
	assert.Contains(t, gen.prompt, "the prediction does not account for short-term weather events")
}

func TestPredictFetchesWeatherAndNotesConcurrently(t *testing.T) {
	gen := &recordingGen{out: []byte(goodResult)}
	w := &stubWeather{snap: snapshot()}
	refs := stubRefs{hits: []entities.KBHit{{Text: "Wheat   likes\nloam."}, {Text: "b"}, {Text: "c"}, {Text: "d"}}}
	svc := NewPredictionService(Deps{Generator: gen, Weather: w, References: refs})

	_, err := svc.Predict(context.Background(), "u1", validForm(), nil)
	require.NoError(t, err)
	require.True(t, w.got.HasCoords())
	assert.InDelta(t, 48.8566, *w.got.Lat, 1e-9)
	assert.Contains(t, gen.prompt, "Weather Forecast Data")
	assert.Contains(t, gen.prompt, "Reference notes:\n- Wheat likes loam.\n- b\n- c\n")
	assert.NotContains(t, gen.prompt, "- d\n")
}

func TestPredictWeatherFailureIsNotFatal(t *testing.T) {
	gen := &recordingGen{out: []byte(goodResult)}
	w := &stubWeather{err: apperr.WeatherService("down", nil)}
	svc := NewPredictionService(Deps{Generator: gen, Weather: w})

	_, err := svc.Predict(context.Background(), "u1", validForm(), nil)
	require.NoError(t, err)
	assert.NotContains(t, gen.prompt, "Weather Forecast Data")
}

func TestPredictValidation(t *testing.T) {
	gen := &recordingGen{out: []byte(goodResult)}
	svc := NewPredictionService(Deps{Generator: gen})

	cases := map[string]func(*entities.PredictionFormData){
		"zero area":      func(f *entities.PredictionFormData) { f.Area = 0 },
		"negative area":  func(f *entities.PredictionFormData) { f.Area = -1 },
		"blank location": func(f *entities.PredictionFormData) { f.Location = "   " },
		"no crop":        func(f *entities.PredictionFormData) { f.CropType = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := validForm()
			mutate(&f)
			res, err := svc.Predict(context.Background(), "u1", f, nil)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
	assert.Zero(t, gen.calls)

	f := validForm()
	f.Area = 0
	_, err := svc.Predict(context.Background(), "u1", f, nil)
	assert.ErrorContains(t, err, "area must be greater than 0")
}

func TestPredictFailuresAreClassified(t *testing.T) {
	hist := historyImp.NewHistoryService(repositoryImp.NewMemory())

	svc := NewPredictionService(Deps{Generator: &recordingGen{err: errors.New("connection reset")}, History: hist})
	_, err := svc.Predict(context.Background(), "u1", validForm(), nil)
	assert.ErrorIs(t, err, apperr.ErrPredictionService)

	svc = NewPredictionService(Deps{Generator: &recordingGen{out: []byte("I cannot help with that")}, History: hist})
	_, err = svc.Predict(context.Background(), "u1", validForm(), nil)
	assert.ErrorIs(t, err, apperr.ErrPredictionParse)

	svc = NewPredictionService(Deps{Generator: &recordingGen{out: []byte(`{"predictedYield":1}`)}, History: hist})
	_, err = svc.Predict(context.Background(), "u1", validForm(), nil)
	assert.ErrorIs(t, err, apperr.ErrPredictionParse)

	assert.Empty(t, hist.List("u1"))
}

func TestCropInfo(t *testing.T) {
	gen := &recordingGen{out: []byte(`{"cropName":"Rice","description":"Staple grain.",
"idealConditions":{"soilType":["Clay"],"temperatureRange":"20-35°C","annualRainfall":"1000-2000 mm"},
"commonPests":["Stem borer"],"growingCycle":"105-150 days"}`)}
	refs := stubRefs{hits: []entities.KBHit{{Text: "Rice is grown in flooded paddies."}}}
	svc := NewPredictionService(Deps{Generator: gen, References: refs})

	info, err := svc.CropInfo(context.Background(), "  Rice ")
	require.NoError(t, err)
	assert.Equal(t, "Rice", info.CropName)
	assert.Equal(t, []string{"Clay"}, info.IdealConditions.SoilType)
	assert.True(t, strings.HasPrefix(gen.prompt, "Provide a detailed profile for the crop: Rice."))
	assert.Contains(t, gen.prompt, "- Rice is grown in flooded paddies.")
	assert.Equal(t, cropInfoSystemInstruction, gen.system)

	_, err = svc.CropInfo(context.Background(), " ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPredictWithMockGenerator(t *testing.T) {
	hist := historyImp.NewHistoryService(repositoryImp.NewMemory())
	svc := NewPredictionService(Deps{Generator: ai.NewMock(), History: hist})
	res, err := svc.Predict(context.Background(), "u1", validForm(), snapshot())
	require.NoError(t, err)
	assert.Contains(t, res.Summary, "Wheat")
	assert.Len(t, hist.List("u1"), 1)
}

func TestValidateHasNoSideEffects(t *testing.T) {
	gen := &recordingGen{out: []byte(goodResult)}
	hist := historyImp.NewHistoryService(repositoryImp.NewMemory())
	svc := NewPredictionService(Deps{Generator: gen, History: hist})

	require.NoError(t, svc.Validate(validForm()))

	f := validForm()
	f.Location, f.Area = "   ", 0
	err := svc.Validate(f)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.ErrorContains(t, err, "location is required")
	assert.ErrorContains(t, err, "area must be greater than 0")
	assert.Zero(t, gen.calls)
	assert.Empty(t, hist.List("u1"))
}
