package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"tax-credit-model/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists run state as one JSON document per row.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logrus.Logger
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(path string, log *logrus.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", path).Info("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS simulations (
			id              TEXT PRIMARY KEY,
			electrolyzer_id TEXT NOT NULL DEFAULT '',
			steps           INTEGER NOT NULL DEFAULT 0,
			summary         TEXT NOT NULL,
			payload         TEXT NOT NULL,
			updated_at      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_simulations_electrolyzer ON simulations(electrolyzer_id)`,

		`CREATE TABLE IF NOT EXISTS electrolyzers (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			payload    TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetSimulationState(ctx context.Context, id string) (*model.SimulationState, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM simulations WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("simulation %q: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get simulation %q: %v: %w", id, err, model.ErrUnknown)
	}

	var st model.SimulationState
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return nil, fmt.Errorf("decode simulation %q: %v: %w", id, err, model.ErrPoisoned)
	}
	return &st, nil
}

func (s *SQLiteStore) CreateSimulationState(ctx context.Context, initial model.SimulationState) (*model.SimulationState, error) {
	if initial.ID == "" {
		initial.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM simulations WHERE id = ?`, initial.ID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check simulation %q: %v: %w", initial.ID, err, model.ErrUnknown)
	}
	if exists > 0 {
		return nil, fmt.Errorf("simulation %q already exists: %w", initial.ID, model.ErrInvalidArgument)
	}
	if err := s.upsertSimulation(ctx, initial); err != nil {
		return nil, err
	}
	return &initial, nil
}

func (s *SQLiteStore) UpdateSimulationState(ctx context.Context, state model.SimulationState) (*model.SimulationState, error) {
	if state.ID == "" {
		return nil, fmt.Errorf("update simulation without id: %w", model.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.upsertSimulation(ctx, state); err != nil {
		return nil, err
	}
	return &state, nil
}

// upsertSimulation must be called with s.mu held.
func (s *SQLiteStore) upsertSimulation(ctx context.Context, st model.SimulationState) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode simulation %q: %v: %w", st.ID, err, model.ErrUnknown)
	}
	summary, err := json.Marshal(st.Summary)
	if err != nil {
		return fmt.Errorf("encode summary %q: %v: %w", st.ID, err, model.ErrUnknown)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO simulations (id, electrolyzer_id, steps, summary, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			electrolyzer_id = excluded.electrolyzer_id,
			steps           = excluded.steps,
			summary         = excluded.summary,
			payload         = excluded.payload,
			updated_at      = excluded.updated_at`,
		st.ID, st.ElectrolyzerID, len(st.Emissions), string(summary), string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert simulation %q: %v: %w", st.ID, err, model.ErrUnknown)
	}
	s.log.WithFields(logrus.Fields{
		"simulation_id": st.ID,
		"steps":         len(st.Emissions),
	}).Debug("simulation persisted")
	return nil
}

func (s *SQLiteStore) ListSimulationStates(ctx context.Context) ([]model.SimulationSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, electrolyzer_id, steps, summary FROM simulations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %v: %w", err, model.ErrUnknown)
	}
	defer rows.Close()

	out := []model.SimulationSummary{}
	for rows.Next() {
		var (
			item    model.SimulationSummary
			summary string
		)
		if err := rows.Scan(&item.ID, &item.ElectrolyzerID, &item.Steps, &summary); err != nil {
			return nil, fmt.Errorf("scan simulation: %v: %w", err, model.ErrUnknown)
		}
		if err := json.Unmarshal([]byte(summary), &item.Summary); err != nil {
			return nil, fmt.Errorf("decode summary %q: %v: %w", item.ID, err, model.ErrPoisoned)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list simulations: %v: %w", err, model.ErrUnknown)
	}
	return out, nil
}

func (s *SQLiteStore) GetElectrolyzer(ctx context.Context, id string) (*model.Electrolyzer, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM electrolyzers WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("electrolyzer %q: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get electrolyzer %q: %v: %w", id, err, model.ErrUnknown)
	}

	var e model.Electrolyzer
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return nil, fmt.Errorf("decode electrolyzer %q: %v: %w", id, err, model.ErrPoisoned)
	}
	return &e, nil
}

func (s *SQLiteStore) CreateElectrolyzer(ctx context.Context, e model.Electrolyzer) (*model.Electrolyzer, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, model.ErrInvalidArgument)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode electrolyzer: %v: %w", err, model.ErrUnknown)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO electrolyzers (id, name, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name    = excluded.name,
			payload = excluded.payload`,
		e.ID, e.Name, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert electrolyzer %q: %v: %w", e.ID, err, model.ErrUnknown)
	}
	return &e, nil
}

func (s *SQLiteStore) ListElectrolyzers(ctx context.Context) ([]model.Electrolyzer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM electrolyzers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list electrolyzers: %v: %w", err, model.ErrUnknown)
	}
	defer rows.Close()

	out := []model.Electrolyzer{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan electrolyzer: %v: %w", err, model.ErrUnknown)
		}
		var e model.Electrolyzer
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode electrolyzer: %v: %w", err, model.ErrPoisoned)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list electrolyzers: %v: %w", err, model.ErrUnknown)
	}
	return out, nil
}
