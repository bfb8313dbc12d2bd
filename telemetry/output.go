package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/slava-sh/agarcup/config"
)

// TickRecord is one per-tick CSV row of a debug run.
type TickRecord struct {
	Tick       int     `csv:"tick"`
	DurationUs int64   `csv:"duration_us"`
	TreeNodes  int     `csv:"tree_nodes"`
	Tips       int     `csv:"tips"`
	BestScore  float64 `csv:"best_score"`
	Slow       bool    `csv:"slow"`
}

// OutputManager handles structured debug-run output with CSV logging.
type OutputManager struct {
	dir       string
	ticksFile *os.File

	ticksHeaderWritten bool
}

// NewOutputManager creates an output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "ticks.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating ticks.csv: %w", err)
	}
	om.ticksFile = f

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTick appends one tick record to ticks.csv.
func (om *OutputManager) WriteTick(rec TickRecord) error {
	if om == nil {
		return nil
	}

	records := []TickRecord{rec}

	if !om.ticksHeaderWritten {
		if err := gocsv.Marshal(records, om.ticksFile); err != nil {
			return fmt.Errorf("writing tick record: %w", err)
		}
		om.ticksHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.ticksFile); err != nil {
			return fmt.Errorf("writing tick record: %w", err)
		}
	}

	return nil
}

// Close flushes and closes the output files.
func (om *OutputManager) Close() error {
	if om == nil || om.ticksFile == nil {
		return nil
	}
	return om.ticksFile.Close()
}
