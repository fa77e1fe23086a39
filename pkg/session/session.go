// Package session keeps per-browser prediction page state. Weather and
// prediction results are applied only when they answer the latest request for
// their concern; older in-flight responses are dropped.
package session

import (
	"sync"

	"agriyield/entities"
)

const (
	WeatherFailedMessage    = "Could not fetch weather data for the location."
	PredictionFailedMessage = "Failed to get prediction. Please check your inputs and try again."
)

// Ticket identifies one in-flight request for a concern.
type Ticket uint64

// View is a copy of a session's state safe to hand to a response encoder.
type View struct {
	Location          string                       `json:"location,omitempty"`
	Weather           *entities.WeatherSnapshot    `json:"weather"`
	Alerts            []string                     `json:"alerts"`
	WeatherError      string                       `json:"weatherError,omitempty"`
	WeatherLoading    bool                         `json:"weatherLoading"`
	FormData          *entities.PredictionFormData `json:"formData,omitempty"`
	Prediction        *entities.PredictionResult   `json:"prediction"`
	PredictionError   string                       `json:"predictionError,omitempty"`
	PredictionLoading bool                         `json:"predictionLoading"`
}

type Session struct {
	mu            sync.Mutex
	weatherGen    uint64
	predictionGen uint64
	state         View
}

// BeginWeather starts a fetch for location. Alerts and the previous error are
// cleared; the old snapshot stays visible until the fetch completes.
func (s *Session) BeginWeather(location string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weatherGen++
	s.state.Location = location
	s.state.WeatherError = ""
	s.state.Alerts = []string{}
	s.state.WeatherLoading = true
	return Ticket(s.weatherGen)
}

// CompleteWeather applies a fetch result. It reports false when t is stale.
// On failure the snapshot is cleared but the prediction is kept.
func (s *Session) CompleteWeather(t Ticket, snap *entities.WeatherSnapshot, alerts []string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(t) != s.weatherGen {
		return false
	}
	s.state.WeatherLoading = false
	if err != nil {
		s.state.Weather = nil
		s.state.Alerts = []string{}
		s.state.WeatherError = WeatherFailedMessage
		return true
	}
	s.state.Weather = snap
	s.state.Alerts = append([]string{}, alerts...)
	s.state.WeatherError = ""
	return true
}

// ClearLocation drops the snapshot and alerts and invalidates any in-flight fetch.
func (s *Session) ClearLocation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weatherGen++
	s.state.Location = ""
	s.state.Weather = nil
	s.state.Alerts = []string{}
	s.state.WeatherError = ""
	s.state.WeatherLoading = false
}

// BeginPrediction starts a prediction and returns the snapshot to embed in the prompt.
func (s *Session) BeginPrediction(form entities.PredictionFormData) (Ticket, *entities.WeatherSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictionGen++
	s.state.FormData = &form
	s.state.Prediction = nil
	s.state.PredictionError = ""
	s.state.PredictionLoading = true
	return Ticket(s.predictionGen), s.state.Weather
}

// CompletePrediction applies a prediction result. It reports false when t is
// stale. A failure never touches the weather state.
func (s *Session) CompletePrediction(t Ticket, res *entities.PredictionResult, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(t) != s.predictionGen {
		return false
	}
	s.state.PredictionLoading = false
	if err != nil {
		s.state.Prediction = nil
		s.state.PredictionError = PredictionFailedMessage
		return true
	}
	s.state.Prediction = res
	s.state.PredictionError = ""
	return true
}

// Reset clears everything and invalidates in-flight requests of both concerns.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weatherGen++
	s.predictionGen++
	s.state = View{Alerts: []string{}}
}

// Snapshot returns the current weather snapshot, if any.
func (s *Session) Snapshot() *entities.WeatherSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Weather
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.state
	v.Alerts = append([]string{}, s.state.Alerts...)
	return v
}

// Store maps browser ids to sessions.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore() *Store { return &Store{sessions: map[string]*Session{}} }

// Get returns the session for uid, creating it on first use.
func (st *Store) Get(uid string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[uid]
	if !ok {
		s = &Session{state: View{Alerts: []string{}}}
		st.sessions[uid] = s
	}
	return s
}
