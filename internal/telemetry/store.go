// Package telemetry records exploration runs into SQLite: the run row, each
// drone's final statistics and pose history, and the per-tick coverage
// series. The schema lives in embedded migrations so every database a run
// touches is at the same version.
package telemetry

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"gonum.org/v1/gonum/stat"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/cave.report/internal/drone"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the run database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, applies PRAGMAs and brings
// the schema up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("embedded migrations: %w", err)
	}
	if err := migrateUp(db, sub); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// applyPragmas applies the SQLite settings every connection needs for
// concurrent write-heavy use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// RunMeta describes a run row.
type RunMeta struct {
	RunID        string
	Started      time.Time
	CaveWidth    int
	CaveHeight   int
	DroneCount   int
	SenseRadius  float64
	CommRadius   float64
	CommCooldown int
	Seed         int64
}

// InsertRun records the start of a run.
func (s *Store) InsertRun(meta RunMeta) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (run_id, started_unix_nanos, cave_width, cave_height,
			drone_count, sense_radius, comm_radius, comm_cooldown, seed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.RunID, meta.Started.UnixNano(), meta.CaveWidth, meta.CaveHeight,
		meta.DroneCount, meta.SenseRadius, meta.CommRadius, meta.CommCooldown, meta.Seed)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", meta.RunID, err)
	}
	return nil
}

// FinishRun stamps a run with its tick count and completion flag.
func (s *Store) FinishRun(runID string, ticks int, completed bool) error {
	_, err := s.db.Exec(`UPDATE runs SET ticks = ?, completed = ? WHERE run_id = ?`,
		ticks, boolToInt(completed), runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

// RecordDrone stores one drone's final statistics and pose history. The
// history insert is batched in a transaction; a long run writes thousands
// of rows per drone.
func (s *Store) RecordDrone(runID string, d *drone.Drone) error {
	st := d.Stats()
	_, err := s.db.Exec(`
		INSERT INTO drone_stats (run_id, drone_id, name, dist_travelled,
			free_count, occupied_count, comm_free_count, comm_occupied_count,
			complete, timesteps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, d.ID(), d.Name(), st.DistTravelled,
		st.FreeCount, st.OccupiedCount, st.CommFreeCount, st.CommOccupiedCount,
		boolToInt(st.Complete), d.Timestep())
	if err != nil {
		return fmt.Errorf("insert stats for drone %d: %w", d.ID(), err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO pose_history (run_id, drone_id, timestep, x, y, bearing)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, rec := range d.PathHistory() {
		if _, err := stmt.Exec(runID, d.ID(), rec.Timestep, rec.X, rec.Y, rec.Bearing); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("insert pose for drone %d ts %d: %w", d.ID(), rec.Timestep, err)
		}
	}
	stmt.Close()
	return tx.Commit()
}

// RecordCoverage stores the per-tick known-cell series for the whole fleet.
func (s *Store) RecordCoverage(runID string, coverage [][]int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO coverage (run_id, tick, drone_id, known_cells)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	for tick, row := range coverage {
		for id, known := range row {
			if _, err := stmt.Exec(runID, tick, id, known); err != nil {
				stmt.Close()
				tx.Rollback()
				return fmt.Errorf("insert coverage tick %d drone %d: %w", tick, id, err)
			}
		}
	}
	stmt.Close()
	return tx.Commit()
}

// RunSummary aggregates a run's per-drone statistics.
type RunSummary struct {
	RunID        string
	DroneCount   int
	DistanceMean float64
	DistanceStd  float64
	TotalFree    int
	TotalOcc     int
	AllComplete  bool
}

// Summarise computes fleet-level aggregates for a run. Distance dispersion
// uses the sample standard deviation.
func (s *Store) Summarise(runID string) (*RunSummary, error) {
	rows, err := s.db.Query(`
		SELECT dist_travelled, free_count, occupied_count, complete
		FROM drone_stats WHERE run_id = ? ORDER BY drone_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sum := &RunSummary{RunID: runID, AllComplete: true}
	var distances []float64
	for rows.Next() {
		var dist float64
		var free, occ, complete int
		if err := rows.Scan(&dist, &free, &occ, &complete); err != nil {
			return nil, err
		}
		distances = append(distances, dist)
		sum.TotalFree += free
		sum.TotalOcc += occ
		if complete == 0 {
			sum.AllComplete = false
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(distances) == 0 {
		return nil, fmt.Errorf("no drone stats for run %s", runID)
	}
	sum.DroneCount = len(distances)
	sum.DistanceMean = stat.Mean(distances, nil)
	if len(distances) > 1 {
		sum.DistanceStd = stat.StdDev(distances, nil)
	}
	return sum, nil
}

// CoverageSeries reloads the per-tick coverage rows for a run, keyed by
// drone id.
func (s *Store) CoverageSeries(runID string) (map[int][]int, error) {
	rows, err := s.db.Query(`
		SELECT tick, drone_id, known_cells FROM coverage
		WHERE run_id = ? ORDER BY tick, drone_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int][]int)
	for rows.Next() {
		var tick, id, known int
		if err := rows.Scan(&tick, &id, &known); err != nil {
			return nil, err
		}
		out[id] = append(out[id], known)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
