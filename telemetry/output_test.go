package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatal(err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}
	// Every method is a no-op on the nil manager.
	if err := om.WriteTick(TickRecord{}); err != nil {
		t.Errorf("nil manager WriteTick: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil manager Close: %v", err)
	}
}

func TestOutputManagerWritesTicks(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := om.WriteTick(TickRecord{Tick: 0, DurationUs: 1500, TreeNodes: 10, Tips: 4, BestScore: 41.5}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTick(TickRecord{Tick: 1, DurationUs: 900, TreeNodes: 15, Tips: 6, BestScore: 42.0, Slow: true}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "ticks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("ticks.csv has %d lines, want header + 2 records", len(lines))
	}
	if !strings.Contains(lines[0], "duration_us") {
		t.Errorf("missing header: %s", lines[0])
	}
	if !strings.Contains(lines[2], "true") {
		t.Errorf("slow flag not serialized: %s", lines[2])
	}
}
