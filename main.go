// Agarcup is a strategy for a competitive cell-eating arena. The engine runs
// it as a child process: one JSON line of configuration, then one line of
// world snapshot per tick on stdin, answered by one command line on stdout.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slava-sh/agarcup/config"
	"github.com/slava-sh/agarcup/game"
	"github.com/slava-sh/agarcup/protocol"
	"github.com/slava-sh/agarcup/strategy"
	"github.com/slava-sh/agarcup/telemetry"
)

// maxLineSize bounds one snapshot line; crowded arenas produce long lines.
const maxLineSize = 1 << 20

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "agarcup: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	debug := os.Getenv("DEBUG_STRATEGY") != ""

	config.MustInit(os.Getenv("AGARCUP_CONFIG"))
	cfg := config.Cfg()

	log := logrus.New()
	log.SetOutput(io.Discard)
	if debug {
		file, err := os.OpenFile(cfg.Debug.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer file.Close()
		log.SetOutput(file)
		log.SetLevel(logrus.DebugLevel)
	}

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 64*1024), maxLineSize)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if !in.Scan() {
		if err := in.Err(); err != nil {
			return fmt.Errorf("reading handshake: %w", err)
		}
		return nil // clean EOF before handshake
	}
	line, err := protocol.Unquote(in.Bytes())
	if err != nil {
		return err
	}
	handshake, err := protocol.ParseHandshake(line)
	if err != nil {
		return err
	}
	if err := cfg.ApplyHandshake(handshake); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"width":  cfg.Game.Width,
		"height": cfg.Game.Height,
	}).Debug("handshake complete")

	planner := strategy.New(cfg, cfg.Planner.Seed, log)
	ticker := telemetry.NewTicker(
		time.Duration(cfg.Planner.AvgTickTime*float64(time.Second)),
		cfg.Debug.PerfWindow,
	)

	var output *telemetry.OutputManager
	if debug {
		output, err = telemetry.NewOutputManager(cfg.Debug.OutputDir)
		if err != nil {
			return err
		}
		defer output.Close()
		if err := output.WriteConfig(cfg); err != nil {
			return err
		}
	}

	for tick := 0; in.Scan(); tick++ {
		line, err := protocol.Unquote(in.Bytes())
		if err != nil {
			return err
		}
		w, err := protocol.ParseWorld(cfg, tick, line)
		if err != nil {
			return err
		}

		ticker.Start()
		cmd := planner.Tick(w)
		elapsed, slow := ticker.Stop()
		if slow {
			cmd.Debug = appendDebug(cmd.Debug, fmt.Sprintf("slow tick: %s", elapsed.Round(time.Microsecond)))
			log.WithFields(logrus.Fields{
				"tick":     tick,
				"duration": elapsed,
			}).Warn("slow tick")
		}

		resp := protocol.NewResponse(cmd)
		if debug {
			resp.Draw = debugDraw(planner, w)
		}
		if err := protocol.Write(out, resp); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("flushing response: %w", err)
		}

		if err := output.WriteTick(telemetry.TickRecord{
			Tick:       tick,
			DurationUs: elapsed.Microseconds(),
			TreeNodes:  planner.TreeSize(),
			Tips:       planner.Tips(),
			BestScore:  planner.BestScore(),
			Slow:       slow,
		}); err != nil {
			return err
		}
	}
	if err := in.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	stats := ticker.Window()
	log.WithFields(logrus.Fields{
		"mean_us":    stats.MeanUs,
		"p90_us":     stats.P90Us,
		"slow_ticks": ticker.SlowTicks(),
	}).Debug("run finished")
	return nil
}

func appendDebug(existing, msg string) string {
	if existing == "" {
		return msg
	}
	return existing + "; " + msg
}

// debugDraw renders the best planned path and the primary vision circle into
// the pass-through drawing envelope.
func debugDraw(planner *strategy.Planner, w *game.World) *protocol.Draw {
	draw := &protocol.Draw{}
	path := planner.BestPath()
	for i := 1; i < len(path); i++ {
		draw.Lines = append(draw.Lines, protocol.Line{
			X1: path[i-1].X, Y1: path[i-1].Y,
			X2: path[i].X, Y2: path[i].Y,
			Color: "green",
		})
	}
	if primary := w.Primary(); primary != nil {
		draw.Circles = append(draw.Circles, protocol.CircleMark{
			X: primary.X, Y: primary.Y, R: primary.R, Color: "white",
		})
	}
	return draw
}
