// Package daemon provides the long-running forecast service: an HTTP API
// plus scheduled threshold checks that email an alert when the projected
// balance starts to breach.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/model"

	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// EntrySource supplies entries and scenarios. *store.Store satisfies it.
// Revision must change whenever entries or scenarios change.
type EntrySource interface {
	ListEntries(expectedOnly bool) ([]model.CashEntry, error)
	GetScenario(id string) (model.Scenario, error)
	Revision() (int64, error)
}

// Notifier delivers breach alerts. *notify.Sender satisfies it.
type Notifier interface {
	Enabled() bool
	SendBreachAlert(breaches []model.ForecastDay, threshold decimal.Decimal) error
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Schedule     string // cron spec for breach checks
	HorizonDays  int
	Threshold    decimal.Decimal
	CacheTTL     time.Duration
	EventsBuffer int

	// Now returns the current time. The forecast's first day is its date.
	Now func() time.Time
}

// Snapshot is a compact forecast state for status/event payloads.
type Snapshot struct {
	At          time.Time       `json:"at"`
	Today       string          `json:"today"`
	HorizonDays int             `json:"horizon_days"`
	Entries     int             `json:"entries"`
	EndBalance  decimal.Decimal `json:"end_balance"`
	LowPoint    decimal.Decimal `json:"low_point"`
	BreachDays  int             `json:"breach_days"`
	FirstBreach string          `json:"first_breach,omitempty"`
}

// Event is emitted whenever a check changes the breach picture.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Notified  bool      `json:"notified,omitempty"`
}

// Event types.
const (
	EventSnapshot      = "snapshot"
	EventBreachStarted = "breach_started"
	EventBreachEarlier = "breach_earlier"
	EventBreachCleared = "breach_cleared"
	EventChanged       = "forecast_changed"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt   time.Time `json:"started_at"`
	LastCheckAt time.Time `json:"last_check_at"`
	Schedule    string    `json:"schedule"`
	CheckCount  int64     `json:"check_count"`
	HorizonDays int       `json:"horizon_days"`
	Threshold   string    `json:"threshold"`
	Summary     Snapshot  `json:"summary"`
	LastError   string    `json:"last_error,omitempty"`
	EventCount  int       `json:"event_count"`
	AlertsSent  int64     `json:"alerts_sent"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg      Config
	src      EntrySource
	notifier Notifier
	logger   *logrus.Logger
	cache    *cache.Cache

	mu          sync.RWMutex
	startedAt   time.Time
	lastCheckAt time.Time
	checkCount  int64
	alertsSent  int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event
}

// New returns a new daemon service. notifier may be nil.
func New(cfg Config, src EntrySource, notifier Notifier, logger *logrus.Logger) *Service {
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 90
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "0 7 * * *"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Service{
		cfg:       cfg,
		src:       src,
		notifier:  notifier,
		logger:    logger,
		cache:     cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		startedAt: cfg.Now(),
	}
}

// Run starts the HTTP endpoints and the check schedule until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	sched := cron.New()
	if _, err := sched.AddFunc(s.cfg.Schedule, s.CheckOnce); err != nil {
		return fmt.Errorf("parsing schedule %q: %w", s.cfg.Schedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.CheckOnce()
	sched.Start()
	s.logger.WithFields(logrus.Fields{
		"addr":     s.cfg.Addr,
		"schedule": s.cfg.Schedule,
	}).Info("daemon started")

	defer func() { <-sched.Stop().Done() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// today is the first forecast day according to the injected clock.
func (s *Service) today() time.Time {
	return model.Date(s.cfg.Now())
}

// CheckOnce recomputes the baseline forecast, records a snapshot and
// sends an alert when the breach set starts or its first day moves earlier.
func (s *Service) CheckOnce() {
	now := s.cfg.Now()
	s.cache.Flush()

	entries, err := s.src.ListEntries(true)
	var window model.ForecastWindow
	if err == nil {
		window, err = forecast.Generate(entries, nil, s.today(), s.cfg.HorizonDays)
	}
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastCheckAt = now
		s.checkCount++
		s.mu.Unlock()
		s.logger.WithError(err).Error("forecast check failed")
		return
	}

	breaches := forecast.BreachedDays(window, s.cfg.Threshold)
	snap := snapshotFromWindow(window, breaches, len(entries), now)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot
	s.hasSnapshot = true
	s.snapshot = snap
	s.lastCheckAt = now
	s.checkCount++
	s.lastError = ""
	s.mu.Unlock()

	evType := classify(prev, snap, prevExists)
	if evType == "" {
		return
	}

	ev := Event{Type: evType, Timestamp: now, Snapshot: snap}
	if shouldAlert(evType) && s.notifier != nil && s.notifier.Enabled() {
		if err := s.notifier.SendBreachAlert(breaches, s.cfg.Threshold); err != nil {
			s.logger.WithError(err).Warn("breach alert not delivered")
		} else {
			ev.Notified = true
			s.mu.Lock()
			s.alertsSent++
			s.mu.Unlock()
		}
	}

	s.logger.WithFields(logrus.Fields{
		"event":        ev.Type,
		"breach_days":  snap.BreachDays,
		"first_breach": snap.FirstBreach,
		"low_point":    snap.LowPoint.String(),
	}).Info("forecast checked")
	s.publishEvent(ev)
}

func snapshotFromWindow(window model.ForecastWindow, breaches []model.ForecastDay, entries int, at time.Time) Snapshot {
	snap := Snapshot{
		At:          at,
		HorizonDays: len(window),
		Entries:     entries,
		EndBalance:  decimal.Zero,
		LowPoint:    forecast.WorstPoint(window),
		BreachDays:  len(breaches),
	}
	if len(window) > 0 {
		snap.Today = model.DayKey(window[0].Date)
		snap.EndBalance = window[len(window)-1].Cumulative
	}
	if len(breaches) > 0 {
		snap.FirstBreach = model.DayKey(breaches[0].Date)
	}
	return snap
}

// classify names the event a new snapshot produces relative to the
// previous one, or "" when nothing worth recording changed.
func classify(prev, curr Snapshot, prevExists bool) string {
	if !prevExists {
		if curr.BreachDays > 0 {
			return EventBreachStarted
		}
		return EventSnapshot
	}
	switch {
	case prev.BreachDays == 0 && curr.BreachDays > 0:
		return EventBreachStarted
	case prev.BreachDays > 0 && curr.BreachDays == 0:
		return EventBreachCleared
	case curr.BreachDays > 0 && curr.FirstBreach < prev.FirstBreach:
		return EventBreachEarlier
	case prev.BreachDays != curr.BreachDays ||
		!prev.EndBalance.Equal(curr.EndBalance) ||
		!prev.LowPoint.Equal(curr.LowPoint) ||
		prev.Today != curr.Today:
		return EventChanged
	}
	return ""
}

func shouldAlert(evType string) bool {
	return evType == EventBreachStarted || evType == EventBreachEarlier
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:   s.startedAt,
		LastCheckAt: s.lastCheckAt,
		Schedule:    s.cfg.Schedule,
		CheckCount:  s.checkCount,
		HorizonDays: s.cfg.HorizonDays,
		Threshold:   s.cfg.Threshold.String(),
		Summary:     s.snapshot,
		LastError:   s.lastError,
		EventCount:  len(s.events),
		AlertsSent:  s.alertsSent,
	}
}
