package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Publicoprivado/snn/internal/config"
	"github.com/Publicoprivado/snn/internal/logging"
	"github.com/Publicoprivado/snn/internal/sim"
	"github.com/Publicoprivado/snn/internal/sonify"
	"github.com/Publicoprivado/snn/internal/space"
	"github.com/Publicoprivado/snn/internal/trace"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a headless simulation session",
		Long: `run builds a random network, applies DC bias to a subset of neurons,
advances the simulation in logical time, and prints each triggered note as a
JSON line. With trace recording configured, the session can be inspected
afterwards with 'snn trace'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			units, _ := cmd.Flags().GetInt("units")
			duration, _ := cmd.Flags().GetDuration("duration")
			biased, _ := cmd.Flags().GetInt("biased")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			rec, err := trace.Open(cfg.Trace.Path)
			if err != nil {
				return err
			}
			defer rec.Close()

			return runSession(cfg, rec, os.Stdout, os.Stderr, units, biased, duration)
		},
	}

	cmd.Flags().Int("units", 8, "Number of neurons to create")
	cmd.Flags().Int("biased", 3, "Number of neurons given DC bias")
	cmd.Flags().Duration("duration", 30*time.Second, "Simulated session length")
	return cmd
}

// jsonlSink writes each triggered payload as one JSON line.
type jsonlSink struct {
	enc *json.Encoder
}

func (s *jsonlSink) Trigger(p sonify.AudioPayload) {
	_ = s.enc.Encode(p)
}

// runSession builds the network and advances it for the session length.
// Neurons are scattered in a small cube, so some land inside the proximity
// threshold and wire up on their own.
func runSession(cfg *config.Config, rec *trace.Recorder, out, errOut io.Writer, units, biased int, duration time.Duration) error {
	if units < 1 {
		return fmt.Errorf("need at least one unit, got %d", units)
	}
	if biased > units {
		biased = units
	}

	log := logging.NewLogger(cfg.Logging.Level, errOut)

	engine := sim.NewEngine(cfg, log, sim.Collaborators{
		Audio:    &jsonlSink{enc: json.NewEncoder(out)},
		Recorder: rec,
	}, time.Now())

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ids := make([]int, 0, units)
	for i := 0; i < units; i++ {
		pos := space.Vec3{
			X: rng.Float64()*4 - 2,
			Y: rng.Float64()*4 - 2,
			Z: rng.Float64()*4 - 2,
		}
		ids = append(ids, engine.AddUnit(pos))
	}

	for i := 0; i < biased; i++ {
		engine.SetDCInput(ids[i], 0.4+rng.Float64()*0.6)
	}

	log.Info("session starting",
		"units", units, "biased", biased,
		"edges", engine.Network().EdgeCount(),
		"duration", duration)

	engine.RunFor(duration)

	log.Info("session finished", "edges", engine.Network().EdgeCount())
	return nil
}
