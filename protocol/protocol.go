// Package protocol maps the engine's line-delimited JSON wire format onto
// the world model and back.
package protocol

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/slava-sh/agarcup/config"
	"github.com/slava-sh/agarcup/game"
)

// mineIn is one own cell on the wire.
type mineIn struct {
	ID  string  `json:"Id"`
	X   float64 `json:"X"`
	Y   float64 `json:"Y"`
	R   float64 `json:"R"`
	M   float64 `json:"M"`
	SX  float64 `json:"SX"`
	SY  float64 `json:"SY"`
	TTF int     `json:"TTF"`
}

// objectIn is one world object on the wire. Which fields are present depends
// on T: food and ejections carry no id, viruses carry Id and M, enemy players
// carry Id, M and R.
type objectIn struct {
	T  string  `json:"T"`
	ID string  `json:"Id"`
	X  float64 `json:"X"`
	Y  float64 `json:"Y"`
	M  float64 `json:"M"`
	R  float64 `json:"R"`
}

// tickIn is one full tick snapshot on the wire.
type tickIn struct {
	Mine    []mineIn   `json:"Mine"`
	Objects []objectIn `json:"Objects"`
}

// ParseHandshake decodes the first input line: a flat mapping from config
// keys to numeric values.
func ParseHandshake(line []byte) (map[string]float64, error) {
	values := make(map[string]float64)
	if err := json.Unmarshal(line, &values); err != nil {
		return nil, fmt.Errorf("protocol: parsing handshake: %w", err)
	}
	return values, nil
}

// ParseWorld decodes a per-tick snapshot line. Unknown object types are a
// hard error.
func ParseWorld(cfg *config.Config, tick int, line []byte) (*game.World, error) {
	var in tickIn
	if err := json.Unmarshal(line, &in); err != nil {
		return nil, fmt.Errorf("protocol: parsing tick %d: %w", tick, err)
	}

	w := &game.World{Tick: tick}
	for _, m := range in.Mine {
		v := game.Pt(m.SX, m.SY)
		// The fast flag is not on the wire: a cell is fast exactly when it
		// moves above its mass-derived speed cap.
		fast := v.Length() > cfg.MaxSpeed(m.M)*(1+1e-9)
		w.Mine = append(w.Mine, game.Cell{
			Blob: game.Blob{Point: game.Pt(m.X, m.Y), R: m.R, M: m.M},
			ID:   m.ID,
			V:    v,
			Fast: fast,
			TTF:  m.TTF,
		})
	}
	for _, o := range in.Objects {
		switch o.T {
		case "F":
			w.Food = append(w.Food, game.Pellet{
				Blob: game.Blob{Point: game.Pt(o.X, o.Y), R: cfg.Game.FoodRadius, M: cfg.Game.FoodMass},
				ID:   game.PelletKey(game.KindFood, o.X, o.Y),
			})
		case "E":
			w.Ejections = append(w.Ejections, game.Pellet{
				Blob: game.Blob{Point: game.Pt(o.X, o.Y), R: cfg.Game.EjectionRadius, M: cfg.Game.EjectionMass},
				ID:   game.PelletKey(game.KindEjection, o.X, o.Y),
			})
		case "V":
			w.Viruses = append(w.Viruses, game.Virus{
				Blob: game.Blob{Point: game.Pt(o.X, o.Y), R: cfg.Game.VirusRadius, M: o.M},
				ID:   o.ID,
				Key:  game.IDKey("V" + o.ID),
			})
		case "P":
			w.Enemies = append(w.Enemies, game.Enemy{
				Blob: game.Blob{Point: game.Pt(o.X, o.Y), R: o.R, M: o.M},
				ID:   o.ID,
				Key:  game.IDKey("P" + o.ID),
			})
		default:
			return nil, fmt.Errorf("protocol: tick %d: unknown object type %q", tick, o.T)
		}
	}
	w.SortMine()
	return w, nil
}

// Line is a debug draw segment.
type Line struct {
	X1    float64 `json:"X1"`
	Y1    float64 `json:"Y1"`
	X2    float64 `json:"X2"`
	Y2    float64 `json:"Y2"`
	Color string  `json:"C,omitempty"`
}

// CircleMark is a debug draw circle.
type CircleMark struct {
	X     float64 `json:"X"`
	Y     float64 `json:"Y"`
	R     float64 `json:"R"`
	Color string  `json:"C,omitempty"`
}

// Draw is the pass-through debug drawing envelope.
type Draw struct {
	Lines   []Line       `json:"Lines"`
	Circles []CircleMark `json:"Circles"`
}

// Response is one per-tick output line. Pause and Draw are emitted only in
// debug mode.
type Response struct {
	X     float64 `json:"X"`
	Y     float64 `json:"Y"`
	Split bool    `json:"Split"`
	Debug string  `json:"Debug"`
	Pause bool    `json:"Pause,omitempty"`
	Draw  *Draw   `json:"Draw,omitempty"`
}

// NewResponse wraps a command for the wire.
func NewResponse(cmd game.Command) Response {
	return Response{X: cmd.X, Y: cmd.Y, Split: cmd.Split, Debug: cmd.Debug}
}

// Command converts a response back into a command, used by round-trip tests
// and the local runner.
func (r Response) Command() game.Command {
	return game.Command{X: r.X, Y: r.Y, Split: r.Split, Debug: r.Debug}
}

// Write emits a response as one JSON line.
func Write(w io.Writer, r Response) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("protocol: marshaling response: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("protocol: writing response: %w", err)
	}
	return nil
}

// Unquote unwraps a line that arrives as a JSON-encoded string, which the
// local runner's captured logs produce.
func Unquote(line []byte) ([]byte, error) {
	if len(line) == 0 || line[0] != '"' {
		return line, nil
	}
	var s string
	if err := json.Unmarshal(line, &s); err != nil {
		return nil, fmt.Errorf("protocol: unquoting line: %w", err)
	}
	return []byte(s), nil
}
