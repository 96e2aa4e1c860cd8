package network

import "sort"

// ConnectionState is the read-only projection of one outgoing connection.
type ConnectionState struct {
	Target int     `json:"target"`
	Weight float64 `json:"weight"`
	Speed  float64 `json:"speed"`
}

// NeuronState is the read-only projection of a neuron handed to the UI and
// presentation collaborators. Revision is the network's structural revision
// at snapshot time, so pollers can skip unchanged state.
type NeuronState struct {
	ID          int               `json:"id"`
	Charge      float64           `json:"charge"`
	Firing      bool              `json:"firing"`
	Refractory  bool              `json:"refractory"`
	DCInput     float64           `json:"dc_input"`
	Connections []ConnectionState `json:"connections"`
	Revision    uint64            `json:"revision"`
}

// Snapshot returns the neuron's current state projection, or false if the
// neuron does not exist.
func (nw *Network) Snapshot(id int) (NeuronState, bool) {
	n, ok := nw.neurons[id]
	if !ok {
		return NeuronState{}, false
	}

	conns := make([]ConnectionState, 0, len(n.outgoing))
	for _, c := range n.outgoing {
		conns = append(conns, ConnectionState{Target: c.Target, Weight: c.Weight, Speed: c.Speed})
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].Target < conns[j].Target })

	return NeuronState{
		ID:          n.id,
		Charge:      n.charge,
		Firing:      n.firing,
		Refractory:  n.InRefractory(nw.sched.Now()),
		DCInput:     n.dcInput,
		Connections: conns,
		Revision:    nw.revision,
	}, true
}
