package network

import "time"

// Connection is a directed, weighted, speed-tagged edge between two neurons.
// At most one connection exists per (source, target) pair; all lifecycle and
// mutation goes through the Network API so the edge set and the source
// neuron's outgoing map never diverge.
type Connection struct {
	Source    int       `json:"source"`
	Target    int       `json:"target"`
	Weight    float64   `json:"weight"` // 0-1, charge delivered per firing
	Speed     float64   `json:"speed"`  // 0-1, higher is faster traversal
	CreatedAt time.Time `json:"created_at"`
}

// edgeKey identifies a connection by its endpoints.
type edgeKey struct {
	source, target int
}

// PresentationHooks receives structural notifications so the rendering
// collaborator can create and dispose meshes. The core calls these
// synchronously and never manages presentation lifetime itself.
type PresentationHooks interface {
	EdgeCreated(c *Connection)
	EdgeRemoved(c *Connection)
	NeuronRemoved(id int)
}

// NopHooks is the null presentation collaborator used when no renderer is
// attached.
type NopHooks struct{}

func (NopHooks) EdgeCreated(*Connection) {}
func (NopHooks) EdgeRemoved(*Connection) {}
func (NopHooks) NeuronRemoved(int)       {}
