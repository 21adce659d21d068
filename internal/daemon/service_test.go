package daemon

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kasplanner/kasplan/internal/model"
	"github.com/kasplanner/kasplan/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type fakeSource struct {
	mu        sync.Mutex
	entries   []model.CashEntry
	scenarios map[string]model.Scenario
	calls     int
	rev       int64
}

func (f *fakeSource) ListEntries(bool) ([]model.CashEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return append([]model.CashEntry(nil), f.entries...), nil
}

func (f *fakeSource) Revision() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rev, nil
}

// setEntries replaces the entries and bumps the revision, as a store write does.
func (f *fakeSource) setEntries(entries []model.CashEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = entries
	f.rev++
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) GetScenario(id string) (model.Scenario, error) {
	sc, ok := f.scenarios[id]
	if !ok {
		return model.Scenario{}, fmt.Errorf("scenario %s: %w", id, store.ErrNotFound)
	}
	return sc, nil
}

type fakeNotifier struct {
	sent [][]model.ForecastDay
}

func (n *fakeNotifier) Enabled() bool { return true }

func (n *fakeNotifier) SendBreachAlert(b []model.ForecastDay, _ decimal.Decimal) error {
	n.sent = append(n.sent, b)
	return nil
}

var today = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func entry(id string, kind model.EntryKind, amount int64, offset int) model.CashEntry {
	return model.CashEntry{
		ID:           id,
		Kind:         kind,
		Amount:       decimal.NewFromInt(amount),
		ExpectedDate: model.Date(today).AddDate(0, 0, offset),
	}
}

func newTestService(src EntrySource, n Notifier) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(Config{
		HorizonDays: 10,
		Threshold:   decimal.NewFromInt(0),
		Now:         func() time.Time { return today },
	}, src, n, logger)
}

func TestClassify(t *testing.T) {
	none := Snapshot{}
	breach := func(first string, n int) Snapshot {
		return Snapshot{BreachDays: n, FirstBreach: first}
	}

	tests := []struct {
		name       string
		prev, curr Snapshot
		prevExists bool
		want       string
	}{
		{"first clean", none, none, false, EventSnapshot},
		{"first breached", none, breach("2025-06-03", 2), false, EventBreachStarted},
		{"started", none, breach("2025-06-03", 2), true, EventBreachStarted},
		{"cleared", breach("2025-06-03", 2), none, true, EventBreachCleared},
		{"earlier", breach("2025-06-05", 2), breach("2025-06-03", 2), true, EventBreachEarlier},
		{"later", breach("2025-06-03", 2), breach("2025-06-05", 1), true, EventChanged},
		{"unchanged", breach("2025-06-03", 2), breach("2025-06-03", 2), true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.prev, tt.curr, tt.prevExists); got != tt.want {
				t.Errorf("classify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, &fakeSource{}, nil, nil)

	s.publishEvent(Event{Type: "a"})
	s.publishEvent(Event{Type: "b"})
	s.publishEvent(Event{Type: "c"})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestCheckOnce_AlertsOnTransitionOnly(t *testing.T) {
	src := &fakeSource{entries: []model.CashEntry{
		entry("in", model.Income, 100, 0),
		entry("out", model.Expense, 300, 5),
	}}
	n := &fakeNotifier{}
	s := newTestService(src, n)

	s.CheckOnce()
	if len(n.sent) != 1 {
		t.Fatalf("alerts after first check = %d, want 1", len(n.sent))
	}
	if got := model.DayKey(n.sent[0][0].Date); got != "2025-06-06" {
		t.Errorf("first breach = %s, want 2025-06-06", got)
	}

	// Same picture: no new alert, no new event.
	s.CheckOnce()
	if len(n.sent) != 1 {
		t.Errorf("alerts after repeat check = %d, want 1", len(n.sent))
	}

	// Breach moves earlier.
	src.mu.Lock()
	src.entries = append(src.entries, entry("early", model.Expense, 150, 2))
	src.mu.Unlock()
	s.CheckOnce()
	if len(n.sent) != 2 {
		t.Errorf("alerts after earlier breach = %d, want 2", len(n.sent))
	}

	st := s.snapshotStatus()
	if st.CheckCount != 3 || st.AlertsSent != 2 || st.EventCount != 2 {
		t.Errorf("status = %+v", st)
	}
	if st.Summary.FirstBreach != "2025-06-03" {
		t.Errorf("FirstBreach = %q, want 2025-06-03", st.Summary.FirstBreach)
	}
}

func TestRouter_Forecast(t *testing.T) {
	src := &fakeSource{
		entries: []model.CashEntry{
			entry("in", model.Income, 1000, 0),
			entry("out", model.Expense, 400, 1),
		},
		scenarios: map[string]model.Scenario{
			"late": {ID: "late", Adjustments: []model.ScenarioAdjustment{
				{EntryID: "in", Kind: model.AdjustDelay, Value: decimal.NewFromInt(3)},
			}},
		},
	}
	srv := httptest.NewServer(newTestService(src, nil).Router())
	defer srv.Close()

	var fr ForecastResponse
	getJSON(t, srv.URL+"/v1/forecast?days=5", http.StatusOK, &fr)
	if fr.Today != "2025-06-01" || len(fr.Window) != 5 {
		t.Fatalf("forecast = today %s, %d days", fr.Today, len(fr.Window))
	}
	if !fr.Window[4].Cumulative.Equal(decimal.NewFromInt(600)) {
		t.Errorf("end balance = %s, want 600", fr.Window[4].Cumulative)
	}

	getJSON(t, srv.URL+"/v1/forecast?days=5&scenario=late", http.StatusOK, &fr)
	if !fr.LowPoint.Equal(decimal.NewFromInt(-400)) {
		t.Errorf("scenario low point = %s, want -400", fr.LowPoint)
	}

	// Second identical request is served from cache.
	calls := src.callCount()
	getJSON(t, srv.URL+"/v1/forecast?days=5", http.StatusOK, &fr)
	if src.callCount() != calls {
		t.Errorf("cached request hit the source")
	}

	var er errorResponse
	getJSON(t, srv.URL+"/v1/forecast?days=0", http.StatusBadRequest, &er)
	getJSON(t, srv.URL+fmt.Sprintf("/v1/forecast?days=%d", MaxWindowDays+1), http.StatusBadRequest, &er)
	getJSON(t, srv.URL+"/v1/forecast?days=2000000000", http.StatusBadRequest, &er)
	getJSON(t, srv.URL+fmt.Sprintf("/v1/forecast?days=%d", MaxWindowDays), http.StatusOK, &fr)
	getJSON(t, srv.URL+"/v1/forecast?scenario=nope", http.StatusNotFound, &er)
}

func TestRouter_ForecastSeesStoreChanges(t *testing.T) {
	src := &fakeSource{entries: []model.CashEntry{entry("in", model.Income, 100, 0)}}
	srv := httptest.NewServer(newTestService(src, nil).Router())
	defer srv.Close()

	var fr ForecastResponse
	getJSON(t, srv.URL+"/v1/forecast?days=3", http.StatusOK, &fr)
	if !fr.Window[2].Cumulative.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("end balance = %s, want 100", fr.Window[2].Cumulative)
	}

	src.setEntries([]model.CashEntry{
		entry("in", model.Income, 100, 0),
		entry("out", model.Expense, 250, 1),
	})
	getJSON(t, srv.URL+"/v1/forecast?days=3", http.StatusOK, &fr)
	if !fr.Window[2].Cumulative.Equal(decimal.NewFromInt(-150)) {
		t.Errorf("end balance after change = %s, want -150 (stale cache?)", fr.Window[2].Cumulative)
	}
}

func TestRouter_SummaryAndAlerts(t *testing.T) {
	src := &fakeSource{entries: []model.CashEntry{
		entry("in", model.Income, 500, 0),
		entry("out", model.Expense, 800, 40),
	}}
	s := newTestService(src, nil)
	s.cfg.HorizonDays = 45
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	var sr SummaryResponse
	getJSON(t, srv.URL+"/v1/summary", http.StatusOK, &sr)
	if len(sr.Periods) != 1 || sr.Periods[0].Days != 30 {
		t.Fatalf("periods = %+v, want only the 30-day period", sr.Periods)
	}
	if len(sr.Weeks) != 7 {
		t.Errorf("weeks = %d, want 7", len(sr.Weeks))
	}

	var ar AlertsResponse
	getJSON(t, srv.URL+"/v1/alerts", http.StatusOK, &ar)
	if len(ar.Breaches) != 5 {
		t.Errorf("breaches = %d, want 5", len(ar.Breaches))
	}
	getJSON(t, srv.URL+"/v1/alerts?threshold=600", http.StatusOK, &ar)
	if len(ar.Breaches) != 45 {
		t.Errorf("breaches at 600 = %d, want 45", len(ar.Breaches))
	}

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz = %d", resp.StatusCode)
	}
}

func getJSON(t *testing.T, url string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding %s: %v", url, err)
	}
}
