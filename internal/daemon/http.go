package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/model"
	"github.com/kasplanner/kasplan/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ForecastResponse is served at /v1/forecast.
type ForecastResponse struct {
	Today      string               `json:"today"`
	Days       int                  `json:"days"`
	ScenarioID string               `json:"scenario_id,omitempty"`
	LowPoint   decimal.Decimal      `json:"low_point"`
	Window     model.ForecastWindow `json:"window"`
}

// SummaryResponse is served at /v1/summary.
type SummaryResponse struct {
	Today      string                `json:"today"`
	ScenarioID string                `json:"scenario_id,omitempty"`
	Periods    []model.PeriodSummary `json:"periods"`
	Weeks      []model.WeekSummary   `json:"weeks"`
}

// AlertsResponse is served at /v1/alerts.
type AlertsResponse struct {
	Today     string              `json:"today"`
	Threshold decimal.Decimal     `json:"threshold"`
	Breaches  []model.ForecastDay `json:"breaches"`
}

// MaxWindowDays caps the days query parameter.
const MaxWindowDays = 3660

type errorResponse struct {
	Error string `json:"error"`
}

// Router returns the daemon's HTTP handler.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/forecast", s.handleForecast)
		r.Get("/summary", s.handleSummary)
		r.Get("/alerts", s.handleAlerts)
	})
	return r
}

func (s *Service) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

// windowFor computes (or fetches from cache) the forecast for the
// request's days and scenario parameters. Cached windows are keyed by the
// source revision, so changes made through the CLI are served at once.
func (s *Service) windowFor(r *http.Request) (model.ForecastWindow, string, error) {
	days := s.cfg.HorizonDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > MaxWindowDays {
			return nil, "", fmt.Errorf("days must be an integer from 1 to %d: %w", MaxWindowDays, forecast.ErrInvalidArgument)
		}
		days = n
	}
	scenarioID := r.URL.Query().Get("scenario")
	today := s.today()

	rev, err := s.src.Revision()
	if err != nil {
		return nil, "", err
	}
	key := fmt.Sprintf("%s|%d|%s|%d", model.DayKey(today), days, scenarioID, rev)
	if cached, found := s.cache.Get(key); found {
		return cached.(model.ForecastWindow), scenarioID, nil
	}

	entries, err := s.src.ListEntries(true)
	if err != nil {
		return nil, "", err
	}
	var adjustments []model.ScenarioAdjustment
	if scenarioID != "" {
		sc, err := s.src.GetScenario(scenarioID)
		if err != nil {
			return nil, "", err
		}
		adjustments = sc.Adjustments
	}

	window, err := forecast.Generate(entries, adjustments, today, days)
	if err != nil {
		return nil, "", err
	}
	s.cache.Set(key, window, cache.DefaultExpiration)
	return window, scenarioID, nil
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleForecast(w http.ResponseWriter, r *http.Request) {
	window, scenarioID, err := s.windowFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ForecastResponse{
		Today:      model.DayKey(s.today()),
		Days:       len(window),
		ScenarioID: scenarioID,
		LowPoint:   forecast.WorstPoint(window),
		Window:     window,
	})
}

func (s *Service) handleSummary(w http.ResponseWriter, r *http.Request) {
	window, scenarioID, err := s.windowFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var periods []int
	for _, p := range forecast.DefaultPeriods {
		if p <= len(window) {
			periods = append(periods, p)
		}
	}
	summaries, err := forecast.Summarize(window, periods...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{
		Today:      model.DayKey(s.today()),
		ScenarioID: scenarioID,
		Periods:    summaries,
		Weeks:      forecast.Weekly(window),
	})
}

func (s *Service) handleAlerts(w http.ResponseWriter, r *http.Request) {
	window, _, err := s.windowFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	threshold := s.cfg.Threshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		threshold, err = decimal.NewFromString(v)
		if err != nil {
			s.writeError(w, fmt.Errorf("threshold %q: %w", v, forecast.ErrInvalidArgument))
			return
		}
	}
	breaches := forecast.BreachedDays(window, threshold)
	if breaches == nil {
		breaches = []model.ForecastDay{}
	}
	writeJSON(w, http.StatusOK, AlertsResponse{
		Today:     model.DayKey(s.today()),
		Threshold: threshold,
		Breaches:  breaches,
	})
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, forecast.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	default:
		s.logger.WithError(err).Error("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
