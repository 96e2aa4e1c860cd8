package network

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Publicoprivado/snn/internal/constants"
	"github.com/Publicoprivado/snn/internal/sched"
)

// Sentinel errors for graph operations. All conditions are handled locally
// by callers; nothing here is fatal.
var (
	ErrUnknownNeuron  = errors.New("unknown neuron")
	ErrSelfConnection = errors.New("connection source and target are the same neuron")
	ErrUnknownEdge    = errors.New("unknown connection")
	ErrDuplicateID    = errors.New("neuron id already registered")
)

// FireHandler is invoked synchronously when a neuron enters its firing
// window. The propagation engine registers itself here.
type FireHandler func(n *Neuron, now time.Time)

// Params holds the network's timing parameters. Zero fields fall back to
// the defaults in internal/constants.
type Params struct {
	Refractory     time.Duration
	FiringDuration time.Duration
	BiasTick       time.Duration
	SweepPeriod    time.Duration
}

// DefaultParams returns the stock timing parameters.
func DefaultParams() Params {
	return Params{
		Refractory:     constants.RefractoryPeriod,
		FiringDuration: constants.FiringDuration,
		BiasTick:       constants.BiasTickPeriod,
		SweepPeriod:    constants.ValidationSweepPeriod,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Refractory <= 0 {
		p.Refractory = d.Refractory
	}
	if p.FiringDuration <= 0 {
		p.FiringDuration = d.FiringDuration
	}
	if p.BiasTick <= 0 {
		p.BiasTick = d.BiasTick
	}
	if p.SweepPeriod <= 0 {
		p.SweepPeriod = d.SweepPeriod
	}
	return p
}

// Network owns the neuron registry and the edge set. Every structural
// mutation routes through it, which is what keeps the edge set and each
// neuron's outgoing map consistent.
type Network struct {
	params   Params
	neurons  map[int]*Neuron
	edges    map[edgeKey]*Connection
	sched    *sched.Scheduler
	rng      *rand.Rand
	log      *slog.Logger
	hooks    PresentationHooks
	onFire   FireHandler
	revision uint64
}

// NewNetwork creates an empty network driven by the given scheduler. The rng
// seeds new connection speeds; pass a seeded source for deterministic runs.
// A nil hooks installs the null presentation collaborator.
func NewNetwork(params Params, s *sched.Scheduler, rng *rand.Rand, log *slog.Logger, hooks PresentationHooks) *Network {
	if log == nil {
		log = slog.Default()
	}
	if hooks == nil {
		hooks = NopHooks{}
	}
	nw := &Network{
		params:  params.withDefaults(),
		neurons: make(map[int]*Neuron),
		edges:   make(map[edgeKey]*Connection),
		sched:   s,
		rng:     rng,
		log:     log,
		hooks:   hooks,
		onFire:  func(*Neuron, time.Time) {},
	}
	s.Every("network:validate", nw.params.SweepPeriod, func(now time.Time) {
		nw.Validate()
	})
	return nw
}

// SetFireHandler installs the firing callback. Passing nil restores the
// no-op handler.
func (nw *Network) SetFireHandler(h FireHandler) {
	if h == nil {
		h = func(*Neuron, time.Time) {}
	}
	nw.onFire = h
}

// Revision returns the structural revision counter, bumped on every state or
// topology change. Presentation polls snapshots against it.
func (nw *Network) Revision() uint64 { return nw.revision }

func (nw *Network) bump() { nw.revision++ }

// Neuron returns the neuron with the given id, or false.
func (nw *Network) Neuron(id int) (*Neuron, bool) {
	n, ok := nw.neurons[id]
	return n, ok
}

// IDs returns all live neuron ids.
func (nw *Network) IDs() []int {
	ids := make([]int, 0, len(nw.neurons))
	for id := range nw.neurons {
		ids = append(ids, id)
	}
	return ids
}

// Size returns the number of live neurons.
func (nw *Network) Size() int { return len(nw.neurons) }

// EdgeCount returns the number of live connections.
func (nw *Network) EdgeCount() int { return len(nw.edges) }

// AddNeuron registers a new neuron under id.
func (nw *Network) AddNeuron(id int) (*Neuron, error) {
	if _, exists := nw.neurons[id]; exists {
		return nil, fmt.Errorf("add neuron %d: %w", id, ErrDuplicateID)
	}
	n := newNeuron(id, nw.params.Refractory)
	nw.neurons[id] = n
	nw.bump()
	return n, nil
}

// RemoveNeuron destroys a neuron: its recurring tasks are cancelled, every
// edge touching it is torn down through the edge API, and the presentation
// hook is notified. In-flight propagation deliveries to or from it become
// no-ops via the liveness checks at delivery time.
func (nw *Network) RemoveNeuron(id int) error {
	if _, ok := nw.neurons[id]; !ok {
		return fmt.Errorf("remove neuron %d: %w", id, ErrUnknownNeuron)
	}

	nw.sched.CancelOwner(dcOwner(id))
	nw.sched.CancelOwner(firingOwner(id))

	for key, c := range nw.edges {
		if key.source == id || key.target == id {
			nw.removeEdge(c)
		}
	}

	delete(nw.neurons, id)
	nw.hooks.NeuronRemoved(id)
	nw.bump()
	return nil
}

// Connect creates a connection source→target with the default weight and a
// randomized speed. Creating an existing connection is idempotent: the edge
// is returned unchanged with no structural effect.
func (nw *Network) Connect(sourceID, targetID int) (*Connection, error) {
	if sourceID == targetID {
		return nil, fmt.Errorf("connect %d->%d: %w", sourceID, targetID, ErrSelfConnection)
	}
	src, ok := nw.neurons[sourceID]
	if !ok {
		return nil, fmt.Errorf("connect %d->%d: source: %w", sourceID, targetID, ErrUnknownNeuron)
	}
	if _, ok := nw.neurons[targetID]; !ok {
		return nil, fmt.Errorf("connect %d->%d: target: %w", sourceID, targetID, ErrUnknownNeuron)
	}

	key := edgeKey{sourceID, targetID}
	if existing, ok := nw.edges[key]; ok {
		return existing, nil
	}

	c := &Connection{
		Source:    sourceID,
		Target:    targetID,
		Weight:    constants.DefaultEdgeWeight,
		Speed:     constants.MinRandomSpeed + nw.rng.Float64()*(constants.MaxRandomSpeed-constants.MinRandomSpeed),
		CreatedAt: nw.sched.Now(),
	}
	nw.edges[key] = c
	src.outgoing[targetID] = c
	nw.hooks.EdgeCreated(c)
	nw.bump()
	return c, nil
}

// Disconnect removes the connection source→target.
func (nw *Network) Disconnect(sourceID, targetID int) error {
	c, ok := nw.edges[edgeKey{sourceID, targetID}]
	if !ok {
		return fmt.Errorf("disconnect %d->%d: %w", sourceID, targetID, ErrUnknownEdge)
	}
	nw.removeEdge(c)
	nw.bump()
	return nil
}

// removeEdge deregisters a connection from the edge set and the source
// neuron's outgoing map, then releases its presentation resources.
func (nw *Network) removeEdge(c *Connection) {
	delete(nw.edges, edgeKey{c.Source, c.Target})
	if src, ok := nw.neurons[c.Source]; ok {
		delete(src.outgoing, c.Target)
	}
	nw.hooks.EdgeRemoved(c)
}

// Edge returns the connection source→target, or false.
func (nw *Network) Edge(sourceID, targetID int) (*Connection, bool) {
	c, ok := nw.edges[edgeKey{sourceID, targetID}]
	return c, ok
}

// Edges returns a copy of the edge set.
func (nw *Network) Edges() []*Connection {
	out := make([]*Connection, 0, len(nw.edges))
	for _, c := range nw.edges {
		out = append(out, c)
	}
	return out
}

// SetWeight updates a connection's weight in place. Values are not
// re-clamped here; callers keep them in [0, 1].
func (nw *Network) SetWeight(sourceID, targetID int, weight float64) error {
	c, ok := nw.edges[edgeKey{sourceID, targetID}]
	if !ok {
		return fmt.Errorf("set weight %d->%d: %w", sourceID, targetID, ErrUnknownEdge)
	}
	c.Weight = weight
	nw.bump()
	return nil
}

// SetSpeed updates a connection's speed in place.
func (nw *Network) SetSpeed(sourceID, targetID int, speed float64) error {
	c, ok := nw.edges[edgeKey{sourceID, targetID}]
	if !ok {
		return fmt.Errorf("set speed %d->%d: %w", sourceID, targetID, ErrUnknownEdge)
	}
	c.Speed = speed
	nw.bump()
	return nil
}

// ResolveProximity handles a proximity threshold crossing reported by the
// detector. The mover becomes the source of any resulting edge:
//
//   - no edge in either direction: create mover→other
//   - existing edge other→mover: transfer ownership (tear down, recreate
//     with the mover as source)
//   - existing edge mover→other: no structural change
func (nw *Network) ResolveProximity(moverID, otherID int) {
	if moverID == otherID {
		return
	}
	if _, ok := nw.neurons[moverID]; !ok {
		return
	}
	if _, ok := nw.neurons[otherID]; !ok {
		return
	}

	if _, ok := nw.edges[edgeKey{moverID, otherID}]; ok {
		return
	}

	if reversed, ok := nw.edges[edgeKey{otherID, moverID}]; ok {
		nw.log.Debug("proximity ownership transfer",
			"old_source", otherID, "new_source", moverID)
		nw.removeEdge(reversed)
	}

	if _, err := nw.Connect(moverID, otherID); err != nil {
		nw.log.Warn("proximity wiring failed", "mover", moverID, "other", otherID, "error", err)
	}
}

// Validate sweeps the edge set and prunes any connection whose endpoints no
// longer resolve to live neurons. Pruned edges are reported, never fatal.
func (nw *Network) Validate() int {
	pruned := 0
	for _, c := range nw.edges {
		_, srcOK := nw.neurons[c.Source]
		_, dstOK := nw.neurons[c.Target]
		if srcOK && dstOK {
			continue
		}
		nw.log.Warn("pruning orphaned connection",
			"source", c.Source, "target", c.Target,
			"source_live", srcOK, "target_live", dstOK)
		nw.removeEdge(c)
		pruned++
	}
	if pruned > 0 {
		nw.bump()
	}
	return pruned
}

// AddCharge delivers charge to a neuron. It is a no-op while the neuron is
// firing or refractory; otherwise charge accumulates, clamped at threshold,
// and reaching threshold fires the neuron.
func (nw *Network) AddCharge(id int, amount float64) {
	n, ok := nw.neurons[id]
	if !ok {
		return
	}
	now := nw.sched.Now()
	if n.firing || n.InRefractory(now) {
		return
	}
	if n.accept(amount, now) {
		nw.Fire(id)
	}
	nw.bump()
}

// SetDCInput sets a neuron's DC bias, clamped to [0, 1] and rounded to 2
// decimals. While the bias is positive, a recurring tick delivers
// dcInput * BiasChargeFactor whenever the neuron can accept charge.
//
// Setting the bias to zero while it was already at (or below) zero forces a
// full reset; otherwise only the recurring tick is cancelled. The asymmetry
// debounces oscillation at the boundary and is deliberate.
func (nw *Network) SetDCInput(id int, value float64) {
	n, ok := nw.neurons[id]
	if !ok {
		return
	}

	prev := n.dcInput
	n.dcInput = roundDCInput(value)
	nw.sched.CancelOwner(dcOwner(id))

	if n.dcInput > 0 {
		nw.sched.Every(dcOwner(id), nw.params.BiasTick, func(now time.Time) {
			live, ok := nw.neurons[id]
			if !ok || live.dcInput <= 0 {
				return
			}
			nw.AddCharge(id, live.dcInput*constants.BiasChargeFactor)
		})
	} else if prev <= 0 {
		nw.sched.CancelOwner(firingOwner(id))
		n.hardReset()
	}
	nw.bump()
}

// Fire puts a neuron into its firing window. It is a no-op if the neuron is
// already firing or still refractory. The fire handler runs synchronously;
// the transition back to Idle (with charge reset) is scheduled after the
// fixed firing duration.
func (nw *Network) Fire(id int) {
	n, ok := nw.neurons[id]
	if !ok {
		return
	}
	now := nw.sched.Now()
	if n.firing || n.InRefractory(now) {
		return
	}

	n.firing = true
	n.lastFiring = now
	nw.bump()

	nw.onFire(n, now)

	nw.sched.After(firingOwner(id), nw.params.FiringDuration, func(time.Time) {
		live, ok := nw.neurons[id]
		if !ok || !live.firing {
			return
		}
		live.firing = false
		live.charge = 0
		nw.bump()
	})
}

// Tick runs the per-frame safety net: any neuron stuck in the Firing state
// past twice its refractory period is hard-reset and the condition logged.
func (nw *Network) Tick() {
	now := nw.sched.Now()
	for id, n := range nw.neurons {
		if n.stuck(now) {
			nw.log.Warn("stuck firing state, forcing reset", "neuron", id)
			nw.sched.CancelOwner(firingOwner(id))
			n.hardReset()
			nw.bump()
		}
	}
}

func dcOwner(id int) string     { return fmt.Sprintf("neuron:%d:dc", id) }
func firingOwner(id int) string { return fmt.Sprintf("neuron:%d:firing", id) }

// PropagationOwner is the scheduler owner key for a neuron's in-flight
// charge deliveries.
func PropagationOwner(id int) string { return fmt.Sprintf("neuron:%d:prop", id) }
