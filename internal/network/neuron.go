// Package network implements the spiking-network core: the per-neuron
// charge/fire/refractory state machine and the connection graph that owns
// every neuron and edge. The Network is the single source of truth; nothing
// in the simulation holds a neuron or connection outside it.
package network

import (
	"math"
	"time"

	"github.com/Publicoprivado/snn/internal/constants"
)

// Neuron is a leaky-integrate-and-fire-like unit. Charge accumulates toward
// a fixed threshold; crossing it fires the neuron, which then sits out a
// refractory window. All mutation happens through the owning Network.
type Neuron struct {
	id         int
	charge     float64
	threshold  float64
	dcInput    float64
	firing     bool
	lastFiring time.Time // zero means never fired
	refractory time.Duration
	outgoing   map[int]*Connection
}

func newNeuron(id int, refractory time.Duration) *Neuron {
	return &Neuron{
		id:         id,
		threshold:  constants.FiringThreshold,
		refractory: refractory,
		outgoing:   make(map[int]*Connection),
	}
}

// ID returns the neuron's stable identity.
func (n *Neuron) ID() int { return n.id }

// Charge returns the accumulated charge, always in [0, threshold].
func (n *Neuron) Charge() float64 { return n.charge }

// Threshold returns the firing threshold.
func (n *Neuron) Threshold() float64 { return n.threshold }

// DCInput returns the current DC bias, in [0, 1] rounded to 2 decimals.
func (n *Neuron) DCInput() float64 { return n.dcInput }

// Firing reports whether the neuron is inside its firing window.
func (n *Neuron) Firing() bool { return n.firing }

// LastFiring returns the timestamp of the most recent firing, or the zero
// time if the neuron has never fired.
func (n *Neuron) LastFiring() time.Time { return n.lastFiring }

// InRefractory reports whether now falls inside the refractory window that
// follows the last firing.
func (n *Neuron) InRefractory(now time.Time) bool {
	if n.lastFiring.IsZero() {
		return false
	}
	return now.Sub(n.lastFiring) < n.refractory
}

// Outgoing returns a copy of the neuron's outgoing connections.
func (n *Neuron) Outgoing() []*Connection {
	out := make([]*Connection, 0, len(n.outgoing))
	for _, c := range n.outgoing {
		out = append(out, c)
	}
	return out
}

// OutDegree returns the number of outgoing connections.
func (n *Neuron) OutDegree() int { return len(n.outgoing) }

// accept applies charge if the neuron can take it. Returns true when the
// charge reached threshold.
func (n *Neuron) accept(amount float64, now time.Time) bool {
	if n.firing || n.InRefractory(now) {
		return false
	}
	n.charge = math.Min(n.charge+amount, n.threshold)
	if n.charge < 0 {
		n.charge = 0
	}
	return n.charge >= n.threshold
}

// stuck reports whether the firing flag has been held past the stuck-state
// deadline, e.g. after an interrupted external animation.
func (n *Neuron) stuck(now time.Time) bool {
	return n.firing && now.Sub(n.lastFiring) > time.Duration(constants.StuckStateFactor)*n.refractory
}

// hardReset restores the neuron to its baseline state: not firing, zero
// charge, firing history cleared.
func (n *Neuron) hardReset() {
	n.firing = false
	n.charge = 0
	n.lastFiring = time.Time{}
}

// roundDCInput clamps a DC input to [0, 1] and rounds it to 2 decimals.
func roundDCInput(v float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	factor := math.Pow(10, constants.DCInputPrecision)
	return math.Round(v*factor) / factor
}
