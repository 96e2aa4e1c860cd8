package space

// ProximityResolver receives threshold crossings. The connection graph
// implements it; the mover becomes the source of any resulting edge.
type ProximityResolver interface {
	ResolveProximity(moverID, otherID int)
}

// Detector reports proximity threshold crossings for moved entities. It runs
// on every reported move, not on a timer, so drag and throw updates each
// re-trigger the pairwise check.
type Detector struct {
	positions PositionSource
	resolver  ProximityResolver
	threshold float64
}

// NewDetector creates a detector over the given position source.
func NewDetector(positions PositionSource, resolver ProximityResolver, threshold float64) *Detector {
	return &Detector{
		positions: positions,
		resolver:  resolver,
		threshold: threshold,
	}
}

// ReportMove checks the moved entity against every other live entity and
// forwards each pair under the threshold to the resolver, mover first.
func (d *Detector) ReportMove(moverID int) {
	moverPos, ok := d.positions.Position(moverID)
	if !ok {
		return
	}

	for _, otherID := range d.positions.IDs() {
		if otherID == moverID {
			continue
		}
		otherPos, ok := d.positions.Position(otherID)
		if !ok {
			continue
		}
		if Distance(moverPos, otherPos) < d.threshold {
			d.resolver.ResolveProximity(moverID, otherID)
		}
	}
}
