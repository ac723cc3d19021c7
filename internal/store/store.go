package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/san-kum/cartsim/internal/dynamo"
)

// Store persists simulation runs under a base directory: a SQLite index of
// run metadata plus one states.csv per run.
type Store struct {
	baseDir string
	db      *sql.DB
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", filepath.Join(s.baseDir, "runs.db"))
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id              TEXT PRIMARY KEY,
			created         INTEGER NOT NULL,
			dt              REAL NOT NULL,
			duration        REAL NOT NULL,
			integrator      TEXT NOT NULL,
			cart_mass       REAL NOT NULL,
			pendulum_mass   REAL NOT NULL,
			pendulum_length REAL NOT NULL,
			viscosity       REAL NOT NULL,
			force           REAL NOT NULL,
			metrics         TEXT NOT NULL
		)
	`)
	if err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type RunMetadata struct {
	ID             string
	Timestamp      time.Time
	Dt             float64
	Duration       float64
	Integrator     string
	CartMass       float64
	PendulumMass   float64
	PendulumLength float64
	Viscosity      float64
	Force          float64
	Metrics        map[string]float64
}

func (s *Store) Save(ctx context.Context, meta RunMetadata, result *dynamo.Result) (string, error) {
	if s.db == nil {
		return "", errors.New("store not initialized")
	}

	meta.ID = uuid.NewString()
	meta.Timestamp = time.Now()
	if meta.Metrics == nil {
		meta.Metrics = result.Metrics
	}

	metricsJSON, err := json.Marshal(meta.Metrics)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created, dt, duration, integrator,
			cart_mass, pendulum_mass, pendulum_length, viscosity, force, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, meta.ID, meta.Timestamp.Unix(), meta.Dt, meta.Duration, meta.Integrator,
		meta.CartMass, meta.PendulumMass, meta.PendulumLength, meta.Viscosity,
		meta.Force, string(metricsJSON))
	if err != nil {
		return "", err
	}

	if err := s.writeStates(meta.ID, result); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func (s *Store) writeStates(runID string, result *dynamo.Result) error {
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.States) == 0 {
		return nil
	}

	header := []string{"time", "x", "theta", "dx", "dtheta"}
	if len(result.States[0]) != 4 {
		header = []string{"time"}
		for i := range result.States[0] {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

const runColumns = `id, created, dt, duration, integrator,
	cart_mass, pendulum_mass, pendulum_length, viscosity, force, metrics`

func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	if s.db == nil {
		return nil, errors.New("store not initialized")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *Store) Load(ctx context.Context, runID string) (*RunMetadata, error) {
	if s.db == nil {
		return nil, errors.New("store not initialized")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	meta, err := scanRun(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run not found: %s", runID)
		}
		return nil, err
	}
	return &meta, nil
}

func scanRun(scan func(dest ...any) error) (RunMetadata, error) {
	var meta RunMetadata
	var created int64
	var metricsJSON string

	err := scan(&meta.ID, &created, &meta.Dt, &meta.Duration, &meta.Integrator,
		&meta.CartMass, &meta.PendulumMass, &meta.PendulumLength,
		&meta.Viscosity, &meta.Force, &metricsJSON)
	if err != nil {
		return meta, err
	}

	meta.Timestamp = time.Unix(created, 0)
	if err := json.Unmarshal([]byte(metricsJSON), &meta.Metrics); err != nil {
		return meta, fmt.Errorf("decode metrics for %s: %w", meta.ID, err)
	}
	return meta, nil
}

func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}
		states = append(states, state)
	}

	return states, times, nil
}
