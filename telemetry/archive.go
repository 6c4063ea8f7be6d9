package telemetry

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Archive is a write-only SQLite store of completed trial results.
// Runs are appended; nothing is ever read back to resume a simulation.
type Archive struct {
	conn *sqlx.DB
}

// OpenArchive opens or creates a results database at the given path.
func OpenArchive(path string) (*Archive, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	a := &Archive{conn: conn}
	if err := a.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.conn.Close()
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		config_yaml TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trials (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		trial INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		habitat TEXT NOT NULL,
		species TEXT NOT NULL,
		steps INTEGER NOT NULL,
		average_population REAL,
		max_population INTEGER NOT NULL,
		min_population INTEGER NOT NULL,
		final_population INTEGER NOT NULL,
		population_stddev REAL NOT NULL,
		deaths INTEGER NOT NULL,
		births INTEGER NOT NULL,
		mortality_rate REAL,
		deaths_age INTEGER NOT NULL,
		deaths_exposure INTEGER NOT NULL,
		deaths_thirst INTEGER NOT NULL,
		deaths_starvation INTEGER NOT NULL,
		extinct_step INTEGER NOT NULL,
		PRIMARY KEY (run_id, habitat, species, trial)
	);

	CREATE TABLE IF NOT EXISTS series (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		habitat TEXT NOT NULL,
		species TEXT NOT NULL,
		trial INTEGER NOT NULL,
		step INTEGER NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		season TEXT NOT NULL,
		population INTEGER NOT NULL,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_series_trial ON series(run_id, habitat, species, trial);
	`
	_, err := a.conn.Exec(schema)
	return err
}

// BeginRun registers a new run and returns its id.
func (a *Archive) BeginRun(configYAML string) (int64, error) {
	res, err := a.conn.Exec(`INSERT INTO runs (started_at, config_yaml) VALUES (?, ?)`,
		time.Now().UTC().Format(time.RFC3339), configYAML)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// trialRow adapts a Snapshot for insertion; undefined rates become NULL.
type trialRow struct {
	RunID int64 `db:"run_id"`
	Snapshot
	AveragePopulation *float64 `db:"average_population"`
	MortalityRate     *float64 `db:"mortality_rate"`
}

// seriesRow tags a trajectory row with its trial identity.
type seriesRow struct {
	RunID   int64  `db:"run_id"`
	Habitat string `db:"habitat"`
	Species string `db:"species"`
	StepStats
}

// SaveTrial writes one trial's report and trajectory in a single transaction.
func (a *Archive) SaveTrial(runID int64, m *Metrics) error {
	snap := m.Snapshot()

	tx, err := a.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := trialRow{
		RunID:             runID,
		Snapshot:          snap,
		AveragePopulation: finiteOrNil(snap.AveragePopulation),
		MortalityRate:     finiteOrNil(snap.MortalityRate),
	}
	if _, err := tx.NamedExec(`INSERT INTO trials
		(run_id, trial, seed, habitat, species, steps, average_population,
		 max_population, min_population, final_population, population_stddev,
		 deaths, births, mortality_rate, deaths_age, deaths_exposure,
		 deaths_thirst, deaths_starvation, extinct_step)
		VALUES (:run_id, :trial, :seed, :habitat, :species, :steps, :average_population,
		 :max_population, :min_population, :final_population, :population_stddev,
		 :deaths, :births, :mortality_rate, :deaths_age, :deaths_exposure,
		 :deaths_thirst, :deaths_starvation, :extinct_step)`, row); err != nil {
		return fmt.Errorf("insert trial %d: %w", snap.Trial, err)
	}

	stmt, err := tx.PrepareNamed(`INSERT INTO series
		(run_id, habitat, species, trial, step, year, month, season, population, births, deaths)
		VALUES (:run_id, :habitat, :species, :trial, :step, :year, :month, :season, :population, :births, :deaths)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range m.Series() {
		if _, err := stmt.Exec(seriesRow{RunID: runID, Habitat: m.Habitat, Species: m.Species, StepStats: s}); err != nil {
			return fmt.Errorf("insert series step %d: %w", s.Step, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Debug("trial archived", "run_id", runID, "trial", snap.Trial, "steps", snap.Steps)
	return nil
}

// TrialCount returns the number of archived trials for a run.
func (a *Archive) TrialCount(runID int64) (int, error) {
	var n int
	err := a.conn.Get(&n, `SELECT COUNT(*) FROM trials WHERE run_id = ?`, runID)
	return n, err
}

// SeriesFor returns the archived trajectory of one trial, ordered by step.
func (a *Archive) SeriesFor(runID int64, habitat, species string, trial int) ([]StepStats, error) {
	var rows []StepStats
	err := a.conn.Select(&rows, `SELECT trial, step, year, month, season, population, births, deaths
		FROM series WHERE run_id = ? AND habitat = ? AND species = ? AND trial = ?
		ORDER BY step`, runID, habitat, species, trial)
	return rows, err
}
