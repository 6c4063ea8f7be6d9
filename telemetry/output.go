package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/ecosim/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir        string
	trialsFile *os.File
	seriesFile *os.File

	// Track if headers have been written
	trialsHeaderWritten bool
	seriesHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "trials.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating trials.csv: %w", err)
	}
	om.trialsFile = f

	f, err = os.Create(filepath.Join(dir, "series.csv"))
	if err != nil {
		om.trialsFile.Close()
		return nil, fmt.Errorf("creating series.csv: %w", err)
	}
	om.seriesFile = f

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTrial appends one trial's report to trials.csv and its trajectory to
// series.csv.
func (om *OutputManager) WriteTrial(m *Metrics) error {
	if om == nil {
		return nil
	}

	if err := om.writeTrialRow(m.Snapshot()); err != nil {
		return err
	}
	series := m.Series()
	if len(series) == 0 {
		return nil
	}
	return om.writeSeries(series)
}

func (om *OutputManager) writeTrialRow(s Snapshot) error {
	records := []Snapshot{s}

	if !om.trialsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.trialsFile); err != nil {
			return fmt.Errorf("writing trials: %w", err)
		}
		om.trialsHeaderWritten = true
		return nil
	}
	// Subsequent writes skip headers
	if err := gocsv.MarshalWithoutHeaders(records, om.trialsFile); err != nil {
		return fmt.Errorf("writing trials: %w", err)
	}
	return nil
}

func (om *OutputManager) writeSeries(rows []StepStats) error {
	if !om.seriesHeaderWritten {
		if err := gocsv.Marshal(rows, om.seriesFile); err != nil {
			return fmt.Errorf("writing series: %w", err)
		}
		om.seriesHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, om.seriesFile); err != nil {
		return fmt.Errorf("writing series: %w", err)
	}
	return nil
}

// WriteSnapshots saves all trial reports as trials.json.
func (om *OutputManager) WriteSnapshots(snaps []Snapshot) error {
	if om == nil {
		return nil
	}
	return WriteSnapshots(filepath.Join(om.dir, "trials.json"), snaps)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.trialsFile != nil {
		if err := om.trialsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.seriesFile != nil {
		if err := om.seriesFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
