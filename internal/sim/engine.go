// Package sim assembles the simulation: network, propagation, proximity
// detection, sonification, and the collaborator seams. It owns the per-frame
// drive loop; everything below it is tick- and task-driven with no real
// concurrency.
package sim

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/Publicoprivado/snn/internal/config"
	"github.com/Publicoprivado/snn/internal/network"
	"github.com/Publicoprivado/snn/internal/propagation"
	"github.com/Publicoprivado/snn/internal/ratelimit"
	"github.com/Publicoprivado/snn/internal/sched"
	"github.com/Publicoprivado/snn/internal/sonify"
	"github.com/Publicoprivado/snn/internal/space"
	"github.com/Publicoprivado/snn/internal/trace"
)

// Collaborators are the external seams. Nil fields get null objects, so a
// headless engine runs without a renderer or synthesizer attached.
type Collaborators struct {
	Audio        propagation.AudioSink
	Signals      propagation.SignalSink
	Presentation network.PresentationHooks
	Recorder     *trace.Recorder
}

// Engine is the assembled simulation.
type Engine struct {
	cfg       *config.Config
	log       *slog.Logger
	sched     *sched.Scheduler
	network   *network.Network
	positions *space.MemoryStore
	detector  *space.Detector
	throw     *space.Throw
	mapper    *sonify.Mapper
	nextID    int
}

// NewEngine builds a simulation engine from the configuration, starting its
// logical clock at start.
func NewEngine(cfg *config.Config, log *slog.Logger, collab Collaborators, start time.Time) *Engine {
	if log == nil {
		log = slog.Default()
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = start.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	s := sched.NewScheduler(start)
	positions := space.NewMemoryStore()

	params := network.Params{
		Refractory:     time.Duration(cfg.Simulation.RefractoryMs) * time.Millisecond,
		FiringDuration: time.Duration(cfg.Simulation.FiringMs) * time.Millisecond,
		BiasTick:       time.Duration(cfg.Simulation.BiasTickMs) * time.Millisecond,
		SweepPeriod:    time.Duration(cfg.Simulation.SweepMs) * time.Millisecond,
	}
	nw := network.NewNetwork(params, s, rng, log, collab.Presentation)

	mapper := sonify.NewMapper()

	audio := collab.Audio
	if audio == nil {
		audio = propagation.NopAudioSink{}
	}
	if collab.Recorder != nil {
		audio = &recordingSink{inner: audio, rec: collab.Recorder, sched: s}
	}

	prop := propagation.NewEngine(
		nw, positions, s,
		mapper,
		ratelimit.NewIntervalLimiter(cfg.Simulation.NoteInterval()),
		audio, collab.Signals,
		rng, log,
	)
	nw.SetFireHandler(prop.OnFire)

	detector := space.NewDetector(positions, nw, cfg.Simulation.ProximityThreshold)

	return &Engine{
		cfg:       cfg,
		log:       log,
		sched:     s,
		network:   nw,
		positions: positions,
		detector:  detector,
		throw:     space.NewThrow(positions, detector, s),
		mapper:    mapper,
	}
}

// Network exposes the graph for queries and edge mutation.
func (e *Engine) Network() *network.Network { return e.network }

// Positions exposes the position store.
func (e *Engine) Positions() *space.MemoryStore { return e.positions }

// Now returns the engine's logical time.
func (e *Engine) Now() time.Time { return e.sched.Now() }

// AddUnit creates a neuron at the given position and returns its id.
func (e *Engine) AddUnit(pos space.Vec3) int {
	e.nextID++
	id := e.nextID
	if _, err := e.network.AddNeuron(id); err != nil {
		// Ids are engine-assigned and monotonic, so this is unreachable
		// short of a bug; log and carry on.
		e.log.Warn("add unit failed", "id", id, "error", err)
		return 0
	}
	e.positions.SetPosition(id, pos)
	e.detector.ReportMove(id)
	return id
}

// RemoveUnit destroys a neuron: graph teardown, position release, any
// running throw cancelled, and its note assignment forgotten.
func (e *Engine) RemoveUnit(id int) {
	if err := e.network.RemoveNeuron(id); err != nil {
		e.log.Warn("remove unit failed", "id", id, "error", err)
		return
	}
	e.positions.Remove(id)
	e.sched.CancelOwner(space.ThrowOwner(id))
	e.mapper.Notes().Forget(id)
}

// MoveUnit repositions a neuron and runs the proximity check, as during a
// drag.
func (e *Engine) MoveUnit(id int, pos space.Vec3) {
	if _, ok := e.network.Neuron(id); !ok {
		return
	}
	e.positions.SetPosition(id, pos)
	e.detector.ReportMove(id)
}

// ReleaseUnit starts drag-release throw physics with the given velocity.
func (e *Engine) ReleaseUnit(id int, velocity space.Vec3) {
	if _, ok := e.network.Neuron(id); !ok {
		return
	}
	e.throw.Release(id, velocity)
}

// SetDCInput sets a neuron's DC bias.
func (e *Engine) SetDCInput(id int, value float64) {
	e.network.SetDCInput(id, value)
}

// Snapshot returns the neuron's read-only state projection.
func (e *Engine) Snapshot(id int) (network.NeuronState, bool) {
	return e.network.Snapshot(id)
}

// Step advances the logical clock to now, running due tasks (bias ticks,
// deliveries, firing-window ends, sweeps, throws) and then the per-frame
// safety net.
func (e *Engine) Step(now time.Time) {
	e.sched.Advance(now)
	e.network.Tick()
}

// RunFor advances the simulation in fixed ticks until duration has elapsed.
func (e *Engine) RunFor(duration time.Duration) {
	tick := e.cfg.Simulation.Tick()
	end := e.sched.Now().Add(duration)
	for now := e.sched.Now().Add(tick); !now.After(end); now = now.Add(tick) {
		e.Step(now)
	}
}

// recordingSink forwards payloads to the real sink after recording them.
type recordingSink struct {
	inner propagation.AudioSink
	rec   *trace.Recorder
	sched *sched.Scheduler
}

func (r *recordingSink) Trigger(p sonify.AudioPayload) {
	r.rec.Record(trace.Event{
		At:        r.sched.Now(),
		Neuron:    p.NeuronID,
		Note:      p.Note.Name,
		Tier:      string(p.Note.Tier),
		Velocity:  p.Velocity,
		Duration:  p.Duration,
		ReverbWet: p.Effects.ReverbWet,
		ChorusWet: p.Effects.ChorusWet,
		Isolated:  p.Isolated,
		HasDC:     p.HasDC,
	})
	r.inner.Trigger(p)
}
