// Package propagation schedules delayed charge delivery when neurons fire.
// It aggregates outgoing-edge statistics into a firing context for the
// sonification mapper and hands the resulting payload to the audio
// collaborator, subject to the process-wide note rate limit.
package propagation

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/Publicoprivado/snn/internal/constants"
	"github.com/Publicoprivado/snn/internal/network"
	"github.com/Publicoprivado/snn/internal/ratelimit"
	"github.com/Publicoprivado/snn/internal/sched"
	"github.com/Publicoprivado/snn/internal/sonify"
	"github.com/Publicoprivado/snn/internal/space"
)

// AudioSink receives triggered note payloads. The simulation either has a
// registered sink or the null one; there is no presence probing at call
// sites.
type AudioSink interface {
	Trigger(p sonify.AudioPayload)
}

// NopAudioSink discards payloads.
type NopAudioSink struct{}

func (NopAudioSink) Trigger(sonify.AudioPayload) {}

// EdgeSignal describes one traversal animation: a pulse leaving Source for
// Target over Duration time units. The duration is derived from edge speed
// and belongs to the rendering contract, but its value is computed here.
type EdgeSignal struct {
	Source   int
	Target   int
	Duration float64
}

// SignalSink receives traversal events for the renderer.
type SignalSink interface {
	EdgeSignal(sig EdgeSignal)
}

// NopSignalSink discards traversal events.
type NopSignalSink struct{}

func (NopSignalSink) EdgeSignal(EdgeSignal) {}

// EdgeStats are the aggregate outgoing-edge statistics feeding the mapper.
type EdgeStats struct {
	Weight   float64
	Speed    float64
	Distance float64
}

// Engine wires firings to deliveries and note triggers.
type Engine struct {
	network   *network.Network
	positions space.PositionSource
	sched     *sched.Scheduler
	mapper    *sonify.Mapper
	limiter   *ratelimit.IntervalLimiter
	audio     AudioSink
	signals   SignalSink
	rng       *rand.Rand
	log       *slog.Logger
}

// NewEngine creates a propagation engine. Nil sinks install the null
// collaborators; nil logger uses the default.
func NewEngine(
	nw *network.Network,
	positions space.PositionSource,
	s *sched.Scheduler,
	mapper *sonify.Mapper,
	limiter *ratelimit.IntervalLimiter,
	audio AudioSink,
	signals SignalSink,
	rng *rand.Rand,
	log *slog.Logger,
) *Engine {
	if audio == nil {
		audio = NopAudioSink{}
	}
	if signals == nil {
		signals = NopSignalSink{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		network:   nw,
		positions: positions,
		sched:     s,
		mapper:    mapper,
		limiter:   limiter,
		audio:     audio,
		signals:   signals,
		rng:       rng,
		log:       log,
	}
}

// OnFire is the network's fire handler. It runs synchronously inside Fire:
// it emits the (rate-limited) note trigger, then schedules one jittered
// delivery per outgoing edge. A delivery whose source left the Firing window,
// or whose edge or endpoints died, before it came due is silently dropped.
func (e *Engine) OnFire(n *network.Neuron, now time.Time) {
	edges := n.Outgoing()
	stats := e.Aggregate(n, edges)

	ctx := sonify.FiringContext{
		NeuronID: n.ID(),
		Weight:   stats.Weight,
		Speed:    stats.Speed,
		Distance: stats.Distance,
		Isolated: len(edges) == 0,
		HasDC:    n.DCInput() > 0,
	}

	if e.limiter.Allow(now) {
		e.audio.Trigger(e.mapper.Map(ctx))
	} else {
		e.log.Debug("note dropped by rate limit", "neuron", n.ID())
	}

	sourceID := n.ID()
	for _, edge := range edges {
		edge := edge
		e.signals.EdgeSignal(EdgeSignal{
			Source:   edge.Source,
			Target:   edge.Target,
			Duration: SpeedToDuration(edge.Speed),
		})

		jitter := time.Duration(e.rng.Float64() * float64(constants.MaxDeliveryJitter))
		e.sched.After(network.PropagationOwner(sourceID), jitter, func(time.Time) {
			src, ok := e.network.Neuron(sourceID)
			if !ok || !src.Firing() {
				return // source reset mid-flight: expected, not an error
			}
			if _, ok := e.network.Edge(sourceID, edge.Target); !ok {
				return // edge disconnected mid-flight
			}
			if _, ok := e.network.Neuron(edge.Target); !ok {
				return
			}
			e.network.AddCharge(edge.Target, edge.Weight)
		})
	}
}

// Aggregate computes the average weight, speed, and target distance over the
// outgoing edges. With zero edges it falls back to the fixed isolated
// statistics, distinguished by whether DC bias is active — the two cases
// feed different audio and visual envelopes.
func (e *Engine) Aggregate(n *network.Neuron, edges []*network.Connection) EdgeStats {
	if len(edges) == 0 {
		if n.DCInput() > 0 {
			return EdgeStats{Weight: constants.IsolatedDCWeight, Speed: constants.IsolatedDCSpeed}
		}
		return EdgeStats{Weight: constants.IsolatedQuietWeight, Speed: constants.IsolatedQuietSpeed}
	}

	var weightSum, speedSum, distSum float64
	distCount := 0
	srcPos, srcOK := e.positions.Position(n.ID())

	for _, c := range edges {
		weightSum += c.Weight
		speedSum += c.Speed
		if srcOK {
			if dstPos, ok := e.positions.Position(c.Target); ok {
				distSum += space.Distance(srcPos, dstPos)
				distCount++
			}
		}
	}

	stats := EdgeStats{
		Weight: weightSum / float64(len(edges)),
		Speed:  speedSum / float64(len(edges)),
	}
	if distCount > 0 {
		stats.Distance = distSum / float64(distCount)
	}
	return stats
}

// SpeedToDuration maps edge speed inversely onto traversal duration: the
// fixed affine map from speed in [0.1, 0.9] to duration in [4.0, 0.6].
// Speeds outside the domain are clamped first.
func SpeedToDuration(speed float64) float64 {
	if speed < constants.SpeedDomainMin {
		speed = constants.SpeedDomainMin
	}
	if speed > constants.SpeedDomainMax {
		speed = constants.SpeedDomainMax
	}
	span := constants.SpeedDomainMax - constants.SpeedDomainMin
	frac := (speed - constants.SpeedDomainMin) / span
	return constants.DurationRangeMax + frac*(constants.DurationRangeMin-constants.DurationRangeMax)
}
