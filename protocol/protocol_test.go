package protocol

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/slava-sh/agarcup/config"
	"github.com/slava-sh/agarcup/game"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func TestParseHandshake(t *testing.T) {
	line := []byte(`{"GAME_WIDTH": 660, "GAME_HEIGHT": 660, "FOOD_MASS": 1.0, "VISCOSITY": 0.25}`)
	values, err := ParseHandshake(line)
	if err != nil {
		t.Fatalf("ParseHandshake: %v", err)
	}
	if values["GAME_WIDTH"] != 660 || values["VISCOSITY"] != 0.25 {
		t.Errorf("unexpected values: %v", values)
	}

	if _, err := ParseHandshake([]byte(`{broken`)); err == nil {
		t.Error("malformed handshake must fail")
	}
}

func TestParseWorld(t *testing.T) {
	cfg := testConfig(t)
	line := []byte(`{
		"Mine": [
			{"Id": "1.1", "X": 100, "Y": 200, "R": 12.6, "M": 40, "SX": 1, "SY": 0, "TTF": 30},
			{"Id": "1.2", "X": 110, "Y": 200, "R": 17.9, "M": 80, "SX": 0, "SY": 0}
		],
		"Objects": [
			{"T": "F", "X": 10, "Y": 20},
			{"T": "E", "X": 30, "Y": 40},
			{"T": "V", "Id": "7", "X": 50, "Y": 60, "M": 40},
			{"T": "P", "Id": "2.1", "X": 70, "Y": 80, "M": 90, "R": 19}
		]
	}`)

	w, err := ParseWorld(cfg, 5, line)
	if err != nil {
		t.Fatalf("ParseWorld: %v", err)
	}

	if w.Tick != 5 {
		t.Errorf("tick = %d, want 5", w.Tick)
	}
	if len(w.Mine) != 2 || len(w.Food) != 1 || len(w.Ejections) != 1 || len(w.Viruses) != 1 || len(w.Enemies) != 1 {
		t.Fatalf("unexpected counts: %d mine, %d food, %d ejections, %d viruses, %d enemies",
			len(w.Mine), len(w.Food), len(w.Ejections), len(w.Viruses), len(w.Enemies))
	}

	// Sorted by mass: the 80-mass cell is primary.
	if w.Primary().ID != "1.2" {
		t.Errorf("primary = %q, want 1.2", w.Primary().ID)
	}
	if w.Mine[1].TTF != 30 {
		t.Errorf("ttf = %d, want 30", w.Mine[1].TTF)
	}

	if w.Food[0].M != cfg.Game.FoodMass || w.Food[0].R != cfg.Game.FoodRadius {
		t.Error("food mass/radius must come from config")
	}
	if w.Ejections[0].M != cfg.Game.EjectionMass {
		t.Error("ejection mass must come from config")
	}
	if w.Viruses[0].R != cfg.Game.VirusRadius {
		t.Error("virus radius must come from config")
	}
	if w.Enemies[0].R != 19 || w.Enemies[0].M != 90 {
		t.Error("enemy mass/radius must come from the wire")
	}
}

func TestParseWorldFastFlag(t *testing.T) {
	cfg := testConfig(t)
	// Max speed for m=100 is 2.5: a cell moving at 9 is fast.
	line := []byte(`{"Mine": [{"Id": "1", "X": 100, "Y": 100, "R": 20, "M": 100, "SX": 9, "SY": 0}], "Objects": []}`)
	w, err := ParseWorld(cfg, 0, line)
	if err != nil {
		t.Fatalf("ParseWorld: %v", err)
	}
	if !w.Mine[0].Fast {
		t.Error("cell above its speed cap must parse as fast")
	}

	line = []byte(`{"Mine": [{"Id": "1", "X": 100, "Y": 100, "R": 20, "M": 100, "SX": 2, "SY": 0}], "Objects": []}`)
	w, err = ParseWorld(cfg, 0, line)
	if err != nil {
		t.Fatalf("ParseWorld: %v", err)
	}
	if w.Mine[0].Fast {
		t.Error("cell under its speed cap must not parse as fast")
	}
}

func TestParseWorldUnknownType(t *testing.T) {
	cfg := testConfig(t)
	line := []byte(`{"Mine": [], "Objects": [{"T": "X", "X": 1, "Y": 2}]}`)
	if _, err := ParseWorld(cfg, 0, line); err == nil {
		t.Error("unknown object type must be a hard error")
	}
}

func TestParseWorldStablePelletIDs(t *testing.T) {
	cfg := testConfig(t)
	line := []byte(`{"Mine": [], "Objects": [{"T": "F", "X": 10.04, "Y": 20.01}]}`)
	w1, err := ParseWorld(cfg, 0, line)
	if err != nil {
		t.Fatal(err)
	}
	line2 := []byte(`{"Mine": [], "Objects": [{"T": "F", "X": 10.01, "Y": 19.96}]}`)
	w2, err := ParseWorld(cfg, 1, line2)
	if err != nil {
		t.Fatal(err)
	}
	if w1.Food[0].ID != w2.Food[0].ID {
		t.Error("pellet ids must be stable under sub-decimal jitter")
	}
}

func TestResponseRoundTrip(t *testing.T) {
	cmd := game.Command{X: 123.5, Y: 456.25, Split: true, Debug: "hi"}

	var buf bytes.Buffer
	if err := Write(&buf, NewResponse(cmd)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("response must be newline-terminated")
	}

	var parsed Response
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if parsed.Command() != cmd {
		t.Errorf("round trip = %+v, want %+v", parsed.Command(), cmd)
	}
}

func TestResponseOmitsDebugExtras(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, NewResponse(game.Command{X: 1, Y: 2})); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "Pause") || strings.Contains(out, "Draw") {
		t.Errorf("non-debug response must omit Pause/Draw: %s", out)
	}
}

func TestUnquote(t *testing.T) {
	plain := []byte(`{"X": 1}`)
	got, err := Unquote(plain)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain) {
		t.Error("plain lines pass through unchanged")
	}

	quoted := []byte(`"{\"X\": 1}"`)
	got, err = Unquote(quoted)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("unquoted = %s, want %s", got, plain)
	}
}
