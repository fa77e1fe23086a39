package serviceImp

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"agriyield/entities"
	"agriyield/pkg/apperr"
	"agriyield/pkg/history/repository"
	"agriyield/pkg/history/service"
	"agriyield/pkg/logger"
)

type historySvc struct {
	kv  repository.KVStore
	now func() time.Time
	mu  sync.Mutex
}

func NewHistoryService(kv repository.KVStore) service.HistoryService {
	return &historySvc{kv: kv, now: time.Now}
}

func slot(uid string) string { return service.SlotPrefix + ":" + uid }

func (s *historySvc) Append(uid string, form entities.PredictionFormData, result entities.PredictionResult) entities.HistoricalPrediction {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	entry := entities.HistoricalPrediction{
		ID:       id.String(),
		Date:     now.UTC().Format(time.RFC3339),
		FormData: form,
		Result:   result,
	}

	list, err := s.load(uid)
	if err != nil {
		logger.Error(apperr.Persistence("load history before append, entry not saved", err))
		return entry
	}
	list = append([]entities.HistoricalPrediction{entry}, list...)
	b, err := json.Marshal(list)
	if err != nil {
		logger.Error(apperr.Persistence("encode history", err))
		return entry
	}
	if err := s.kv.Set(slot(uid), b); err != nil {
		logger.Error(apperr.Persistence("save history", err))
	}
	return entry
}

func (s *historySvc) List(uid string) []entities.HistoricalPrediction {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load(uid)
	if err != nil {
		logger.Error(apperr.Persistence("load history", err))
		return []entities.HistoricalPrediction{}
	}
	return list
}

func (s *historySvc) Clear(uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Remove(slot(uid)); err != nil {
		logger.Error(apperr.Persistence("clear history", err))
	}
}

// load reads uid's slot. A missing or corrupt slot reads as empty; only a
// failed read is an error.
func (s *historySvc) load(uid string) ([]entities.HistoricalPrediction, error) {
	out := []entities.HistoricalPrediction{}
	raw, ok, err := s.kv.Get(slot(uid))
	if err != nil {
		return nil, err
	}
	if !ok {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		logger.WarnF("[history] slot %s is corrupt, reading as empty: %v", slot(uid), err)
		return []entities.HistoricalPrediction{}, nil
	}
	return out, nil
}
