package serviceImp

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriyield/entities"
	"agriyield/pkg/history/repository"
	"agriyield/pkg/history/repositoryImp"
)

type failingKV struct{}

func (failingKV) Get(string) ([]byte, bool, error) { return nil, false, errors.New("quota exceeded") }
func (failingKV) Set(string, []byte) error         { return errors.New("quota exceeded") }
func (failingKV) Remove(string) error              { return errors.New("quota exceeded") }

func form(crop string) entities.PredictionFormData {
	return entities.PredictionFormData{CropType: crop, Location: "Lat: 1.0000, Lng: 2.0000", SoilType: "Loam", FertilizerType: "Organic", Area: 2}
}

func TestAppendPrependsMostRecentFirst(t *testing.T) {
	svc := NewHistoryService(repositoryImp.NewMemory()).(*historySvc)
	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	first := svc.Append("u1", form("Wheat"), entities.PredictionResult{PredictedYield: 3})
	svc.now = func() time.Time { return base.Add(time.Minute) }
	second := svc.Append("u1", form("Rice"), entities.PredictionResult{PredictedYield: 5})

	list := svc.List("u1")
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "2024-06-03T10:01:00Z", list[0].Date)
	assert.NotEqual(t, first.ID, second.ID)

	id, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestListIsolatedPerBrowser(t *testing.T) {
	svc := NewHistoryService(repositoryImp.NewMemory())
	svc.Append("u1", form("Wheat"), entities.PredictionResult{})
	assert.Empty(t, svc.List("u2"))
	assert.NotNil(t, svc.List("u2"))
}

func TestCorruptSlotReadsAsEmpty(t *testing.T) {
	kv := repositoryImp.NewMemory()
	require.NoError(t, kv.Set("agriYieldHistory:u1", []byte("{not json")))
	svc := NewHistoryService(kv)
	assert.Empty(t, svc.List("u1"))

	require.NoError(t, kv.Set("agriYieldHistory:u1", []byte("null")))
	assert.Empty(t, svc.List("u1"))

	// appending over a corrupt slot starts a fresh log
	require.NoError(t, kv.Set("agriYieldHistory:u1", []byte("{not json")))
	svc.Append("u1", form("Wheat"), entities.PredictionResult{})
	assert.Len(t, svc.List("u1"), 1)
}

func TestClear(t *testing.T) {
	svc := NewHistoryService(repositoryImp.NewMemory())
	svc.Append("u1", form("Wheat"), entities.PredictionResult{})
	svc.Clear("u1")
	assert.Empty(t, svc.List("u1"))
}

func TestPersistenceErrorsAreSwallowed(t *testing.T) {
	svc := NewHistoryService(failingKV{})
	entry := svc.Append("u1", form("Wheat"), entities.PredictionResult{PredictedYield: 2})
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 2.0, entry.Result.PredictedYield)
	assert.Empty(t, svc.List("u1"))
	assert.NotPanics(t, func() { svc.Clear("u1") })
}

// flakyKV wraps a store and fails reads while locked is set.
type flakyKV struct {
	repository.KVStore
	locked bool
	writes int
}

func (f *flakyKV) Get(key string) ([]byte, bool, error) {
	if f.locked {
		return nil, false, errors.New("database is locked")
	}
	return f.KVStore.Get(key)
}

func (f *flakyKV) Set(key string, value []byte) error {
	f.writes++
	return f.KVStore.Set(key, value)
}

func TestAppendKeepsHistoryWhenReadFails(t *testing.T) {
	kv := &flakyKV{KVStore: repositoryImp.NewMemory()}
	svc := NewHistoryService(kv)
	for _, crop := range []string{"Wheat", "Rice", "Barley"} {
		svc.Append("u1", form(crop), entities.PredictionResult{})
	}
	require.Equal(t, 3, kv.writes)

	kv.locked = true
	entry := svc.Append("u1", form("Sorghum"), entities.PredictionResult{PredictedYield: 2})
	assert.Equal(t, "Sorghum", entry.FormData.CropType)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 3, kv.writes)
	assert.Empty(t, svc.List("u1"))

	kv.locked = false
	list := svc.List("u1")
	require.Len(t, list, 3)
	assert.Equal(t, "Barley", list[0].FormData.CropType)
}
