// Package store persists cash entries and scenarios in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kasplanner/kasplan/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a scenario id does not exist.
var ErrNotFound = errors.New("not found")

// Store provides SQLite-backed entry and scenario storage.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveEntries inserts or replaces entries in one transaction.
func (s *Store) SaveEntries(entries []model.CashEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		_, err = tx.Exec(`INSERT OR REPLACE INTO entries
			(entry_id, kind, source, amount, expected_date, status, description, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Kind.String(), e.Source.String(), e.Amount.String(),
			model.DayKey(e.ExpectedDate), e.Status.String(), e.Description, now,
		)
		if err != nil {
			return fmt.Errorf("saving entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// ListEntries returns stored entries ordered by expected date. With
// expectedOnly set, only entries still awaiting payment are returned.
func (s *Store) ListEntries(expectedOnly bool) ([]model.CashEntry, error) {
	query := `SELECT entry_id, kind, source, amount, expected_date, status, description
		FROM entries`
	var args []any
	if expectedOnly {
		query += " WHERE status = ?"
		args = append(args, model.StatusExpected.String())
	}
	query += " ORDER BY expected_date, entry_id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []model.CashEntry
	for rows.Next() {
		var (
			e                                  model.CashEntry
			kind, source, amount, date, status string
			description                        sql.NullString
		)
		if err := rows.Scan(&e.ID, &kind, &source, &amount, &date, &status, &description); err != nil {
			return nil, err
		}
		if e.Kind, err = model.ParseEntryKind(kind); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if e.Source, err = model.ParseEntrySource(source); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if e.Status, err = model.ParseEntryStatus(status); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("entry %s: amount: %w", e.ID, err)
		}
		if e.ExpectedDate, err = time.Parse(model.DateLayout, date); err != nil {
			return nil, fmt.Errorf("entry %s: date: %w", e.ID, err)
		}
		e.Description = description.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteEntry removes an entry. Scenario adjustments that reference it
// are kept; they become no-ops.
func (s *Store) DeleteEntry(id string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM entries WHERE entry_id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// EntryCount returns the number of stored entries.
func (s *Store) EntryCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count)
	return count, err
}

// Revision returns a counter that increases with every change to entries,
// scenarios or adjustments, including changes made by other processes.
func (s *Store) Revision() (int64, error) {
	var rev int64
	err := s.db.QueryRow("SELECT value FROM revision WHERE id = 1").Scan(&rev)
	return rev, err
}

// CreateScenario stores a new, empty scenario.
func (s *Store) CreateScenario(name string) (model.Scenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Scenario{}, errors.New("scenario name is empty")
	}
	sc := model.Scenario{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err := s.db.Exec("INSERT INTO scenarios (scenario_id, name, created_at) VALUES (?, ?, ?)",
		sc.ID, sc.Name, sc.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return model.Scenario{}, fmt.Errorf("creating scenario: %w", err)
	}
	return sc, nil
}

// AddAdjustment appends an adjustment to the end of a scenario's list.
func (s *Store) AddAdjustment(scenarioID string, adj model.ScenarioAdjustment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRow("SELECT COUNT(*) FROM scenarios WHERE scenario_id = ?", scenarioID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("scenario %s: %w", scenarioID, ErrNotFound)
	}

	var next int
	err = tx.QueryRow("SELECT COALESCE(MAX(position) + 1, 0) FROM scenario_adjustments WHERE scenario_id = ?",
		scenarioID).Scan(&next)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO scenario_adjustments (scenario_id, position, entry_id, kind, value)
		VALUES (?, ?, ?, ?, ?)`, scenarioID, next, adj.EntryID, adj.Kind.String(), adj.Value.String())
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetScenario loads one scenario with its adjustments in list order.
func (s *Store) GetScenario(id string) (model.Scenario, error) {
	var sc model.Scenario
	var created string
	err := s.db.QueryRow("SELECT scenario_id, name, created_at FROM scenarios WHERE scenario_id = ?", id).
		Scan(&sc.ID, &sc.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Scenario{}, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Scenario{}, err
	}
	sc.CreatedAt, _ = time.Parse(time.RFC3339, created)

	byScenario, err := s.loadAdjustments("WHERE scenario_id = ?", id)
	if err != nil {
		return model.Scenario{}, err
	}
	sc.Adjustments = byScenario[id]
	return sc, nil
}

// ListScenarios returns all scenarios, newest first.
func (s *Store) ListScenarios() ([]model.Scenario, error) {
	rows, err := s.db.Query("SELECT scenario_id, name, created_at FROM scenarios ORDER BY created_at DESC, name")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var scenarios []model.Scenario
	for rows.Next() {
		var sc model.Scenario
		var created string
		if err := rows.Scan(&sc.ID, &sc.Name, &created); err != nil {
			return nil, err
		}
		sc.CreatedAt, _ = time.Parse(time.RFC3339, created)
		scenarios = append(scenarios, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Batch-load adjustments
	byScenario, err := s.loadAdjustments("")
	if err != nil {
		return nil, err
	}
	for i := range scenarios {
		scenarios[i].Adjustments = byScenario[scenarios[i].ID]
	}
	return scenarios, nil
}

func (s *Store) loadAdjustments(where string, args ...any) (map[string][]model.ScenarioAdjustment, error) {
	rows, err := s.db.Query(`SELECT scenario_id, entry_id, kind, value
		FROM scenario_adjustments `+where+` ORDER BY scenario_id, position`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string][]model.ScenarioAdjustment)
	for rows.Next() {
		var sid, kind, value string
		var adj model.ScenarioAdjustment
		if err := rows.Scan(&sid, &adj.EntryID, &kind, &value); err != nil {
			return nil, err
		}
		if adj.Kind, err = model.ParseAdjustmentKind(kind); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sid, err)
		}
		if adj.Value, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("scenario %s: value: %w", sid, err)
		}
		result[sid] = append(result[sid], adj)
	}
	return result, rows.Err()
}

// DeleteScenario removes a scenario and its adjustments.
func (s *Store) DeleteScenario(id string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM scenarios WHERE scenario_id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
