package serviceImp

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"agriyield/entities"
	"agriyield/pkg/ai"
	"agriyield/pkg/apperr"
	historySvc "agriyield/pkg/history/service"
	"agriyield/pkg/logger"
	"agriyield/pkg/prediction/service"
	"agriyield/pkg/weather"
	weatherSvc "agriyield/pkg/weather/service"
)

// referenceNotes is how many KB snippets are added to a prompt.
const referenceNotes = 3

// References is the slice of the knowledge base the orchestrator reads.
type References interface {
	Search(ctx context.Context, query string, k int) ([]entities.KBHit, error)
}

// Deps wires the orchestrator. Weather and References are optional.
type Deps struct {
	Generator  ai.Generator
	History    historySvc.HistoryService
	Weather    weatherSvc.WeatherService
	References References
}

type predictionSvc struct {
	gen      ai.Generator
	history  historySvc.HistoryService
	weather  weatherSvc.WeatherService
	refs     References
	validate *validator.Validate
}

func NewPredictionService(d Deps) service.PredictionService {
	return &predictionSvc{gen: d.Generator, history: d.History, weather: d.Weather, refs: d.References, validate: newValidator()}
}

func (s *predictionSvc) Validate(form entities.PredictionFormData) error {
	return validateForm(s.validate, form)
}

func (s *predictionSvc) Predict(ctx context.Context, uid string, form entities.PredictionFormData, snap *entities.WeatherSnapshot) (*entities.PredictionResult, error) {
	if err := validateForm(s.validate, form); err != nil {
		return nil, err
	}

	var notes []string
	g, gctx := errgroup.WithContext(ctx)
	if snap == nil && s.weather != nil {
		loc := weather.ParseLocation(form.Location)
		g.Go(func() error {
			fetched, err := s.weather.Snapshot(gctx, loc)
			if err != nil {
				logger.WarnF("[predict] no forecast for %q, predicting without weather: %v", form.Location, err)
				return nil
			}
			snap = fetched
			return nil
		})
	}
	g.Go(func() error {
		notes = s.lookupNotes(gctx, form.CropType+" "+form.SoilType+" "+form.FertilizerType)
		return nil
	})
	_ = g.Wait()

	schema, err := ai.PredictionSchema()
	if err != nil {
		return nil, apperr.PredictionService("build prediction schema", err)
	}
	raw, err := s.gen.Generate(ctx, predictionPrompt(form, snap, notes), predictionSystemInstruction, schema)
	if err != nil {
		logger.ErrorF("[predict] %s: %v", s.gen.Name(), err)
		return nil, asService(err)
	}
	res, err := ai.Decode[entities.PredictionResult](raw, schema)
	if err != nil {
		logger.ErrorF("[predict] unusable output from %s: %v", s.gen.Name(), err)
		return nil, err
	}

	if s.history != nil {
		s.history.Append(uid, form, *res)
	}
	return res, nil
}

func (s *predictionSvc) CropInfo(ctx context.Context, cropName string) (*entities.CropInfo, error) {
	cropName = strings.TrimSpace(cropName)
	if cropName == "" {
		return nil, apperr.Validation("crop name is required", nil)
	}
	notes := s.lookupNotes(ctx, cropName)

	schema, err := ai.CropInfoSchema()
	if err != nil {
		return nil, apperr.PredictionService("build crop info schema", err)
	}
	raw, err := s.gen.Generate(ctx, cropInfoPrompt(cropName, notes), cropInfoSystemInstruction, schema)
	if err != nil {
		logger.ErrorF("[crop] %s for %s: %v", s.gen.Name(), cropName, err)
		return nil, asService(err)
	}
	info, err := ai.Decode[entities.CropInfo](raw, schema)
	if err != nil {
		logger.ErrorF("[crop] unusable output for %s: %v", cropName, err)
		return nil, err
	}
	return info, nil
}

// lookupNotes never fails; a KB problem only means no reference notes.
func (s *predictionSvc) lookupNotes(ctx context.Context, query string) []string {
	if s.refs == nil {
		return nil
	}
	hits, err := s.refs.Search(ctx, query, referenceNotes)
	if err != nil {
		logger.WarnF("[kb] reference lookup %q: %v", query, err)
		return nil
	}
	notes := make([]string, 0, len(hits))
	for _, h := range hits {
		notes = append(notes, h.Text)
	}
	return notes
}

func asService(err error) error {
	if apperr.KindOf(err) == "" {
		return apperr.PredictionService("generation failed", err)
	}
	return err
}
