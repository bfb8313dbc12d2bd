package game

import (
	"math"
	"testing"

	"github.com/slava-sh/agarcup/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func cell(x, y, m float64) Cell {
	return Cell{Blob: Blob{Point: Pt(x, y), R: 2 * math.Sqrt(m), M: m}, ID: "1"}
}

func TestMaxSpeed(t *testing.T) {
	cfg := testConfig(t)
	c := cell(0, 0, 25)
	if got := c.MaxSpeed(cfg); math.Abs(got-5) > eps {
		t.Errorf("MaxSpeed(m=25) = %v, want 5", got)
	}
}

func TestCanEat(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name  string
		eater Cell
		prey  Blob
		want  bool
	}{
		{
			// dist 10, threshold 20 + 2.5*(1 - 2*2/3) ≈ 19.17 > 10
			"big cell over nearby food",
			cell(100, 100, 100),
			Blob{Point: Pt(110, 100), R: 2.5, M: 1},
			true,
		},
		{
			"mass factor not met",
			cell(100, 100, 10),
			Blob{Point: Pt(100, 100), R: 2 * math.Sqrt(10), M: 10},
			false,
		},
		{
			"too far away",
			cell(100, 100, 100),
			Blob{Point: Pt(200, 100), R: 2.5, M: 1},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eater.CanEat(cfg, tt.prey); got != tt.want {
				t.Errorf("CanEat = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanBurst(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name string
		m    float64
		want bool
	}{
		{"below twice burst mass", 119, false},
		{"just above", 121, true},
		{"exactly twice", 120, true},
		{"tiny", 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cell(0, 0, tt.m)
			if got := c.CanBurst(cfg); got != tt.want {
				t.Errorf("CanBurst(m=%v) = %v, want %v", tt.m, got, tt.want)
			}
		})
	}
}

func TestCanSplit(t *testing.T) {
	cfg := testConfig(t)
	if cell(0, 0, 120).CanSplit(cfg) {
		t.Error("CanSplit(m=120) = true, want false")
	}
	if !cell(0, 0, 121).CanSplit(cfg) {
		t.Error("CanSplit(m=121) = false, want true")
	}
}

func TestCanSee(t *testing.T) {
	cfg := testConfig(t)

	c := cell(100, 100, 25) // r = 10, vision radius 40 + other.r
	food := Blob{Point: Pt(130, 100), R: 2.5, M: 1}
	if !c.CanSee(cfg, food) {
		t.Error("food at distance 30 should be visible")
	}

	far := Blob{Point: Pt(200, 100), R: 2.5, M: 1}
	if c.CanSee(cfg, far) {
		t.Error("food at distance 100 should not be visible")
	}

	// Vision shifts along the velocity: moving east brings an item at
	// distance 50, outside the unshifted circle, into it.
	c.V = Pt(100, 0)
	edge := Blob{Point: Pt(150, 100), R: 2.5, M: 1}
	if !c.CanSee(cfg, edge) {
		t.Error("vision centre shifted forward should reach the item at 50")
	}
}

func TestVirusCanHurt(t *testing.T) {
	cfg := testConfig(t)
	v := Virus{Blob: Blob{Point: Pt(100, 100), R: cfg.Game.VirusRadius, M: 40}, ID: "7"}

	big := cell(105, 100, 200) // r ~ 28.3 > virus radius, burstable
	if !v.CanHurt(cfg, &big) {
		t.Error("adjacent burstable cell should be hurt")
	}

	small := cell(105, 100, 30) // r ~ 11 < virus radius
	if v.CanHurt(cfg, &small) {
		t.Error("cell smaller than the virus is never hurt")
	}

	farAway := cell(400, 400, 200)
	if v.CanHurt(cfg, &farAway) {
		t.Error("distant cell should not be hurt")
	}
}

func TestPelletKeyStable(t *testing.T) {
	a := PelletKey(KindFood, 10.04, 20.01)
	b := PelletKey(KindFood, 10.01, 19.99)
	if a != b {
		t.Error("keys should agree after rounding to one decimal")
	}
	if PelletKey(KindFood, 10.0, 20.0) == PelletKey(KindEjection, 10.0, 20.0) {
		t.Error("kind must distinguish keys")
	}
	if PelletKey(KindFood, 10.0, 20.0) == PelletKey(KindFood, 10.1, 20.0) {
		t.Error("different rounded positions must differ")
	}
}

func TestSortMine(t *testing.T) {
	w := &World{Mine: []Cell{
		cell(0, 0, 10),
		cell(0, 0, 30),
		{Blob: Blob{Point: Pt(0, 0), M: 30}, Fast: true},
	}}
	w.SortMine()

	if w.Mine[0].M != 30 || !w.Mine[0].Fast {
		t.Errorf("primary should be the fast 30-mass cell, got m=%v fast=%v", w.Mine[0].M, w.Mine[0].Fast)
	}
	if w.Mine[2].M != 10 {
		t.Errorf("lightest cell should sort last, got m=%v", w.Mine[2].M)
	}
	if w.Primary() != &w.Mine[0] {
		t.Error("Primary should return the first cell")
	}
}

func TestNewCommandClamps(t *testing.T) {
	cfg := testConfig(t)
	cmd := NewCommand(cfg, Pt(-50, 10000))
	if cmd.X != 0 || cmd.Y != cfg.Game.Height {
		t.Errorf("command not clamped: (%v, %v)", cmd.X, cmd.Y)
	}
}
