package sonify

// Tier is the melodic range a neuron is pinned to.
type Tier string

const (
	TierMid  Tier = "mid"
	TierHigh Tier = "high"
	TierLow  Tier = "low"
)

// Note is a neuron's permanent note descriptor: its range tier plus an index
// into that tier's pentatonic scale.
type Note struct {
	Name         string `json:"name"`
	Tier         Tier   `json:"tier"`
	PatternIndex int    `json:"pattern_index"`
}

// traversalPattern is the shared 5-step walk through each pentatonic scale.
// Successive new neurons draw successive pattern steps, so neighbours in
// creation order land on musically distinct degrees.
var traversalPattern = [5]int{0, 2, 4, 3, 1}

// Pentatonic scales (C major pentatonic) per tier.
var tierScales = map[Tier][5]string{
	TierLow:  {"C2", "D2", "E2", "G2", "A2"},
	TierMid:  {"C3", "D3", "E3", "G3", "A3"},
	TierHigh: {"C4", "D4", "E4", "G4", "A4"},
}

// tierForID picks a neuron's range tier from its id. The mapping is fixed so
// a neuron always resolves to the same tier.
func tierForID(id int) Tier {
	switch id % 3 {
	case 0:
		return TierMid
	case 1:
		return TierHigh
	default:
		return TierLow
	}
}

// NoteAssigner hands out permanent note descriptors. The pattern cursor is
// shared across all neurons: each first-use assignment advances it by one,
// wrapping at the pattern length.
type NoteAssigner struct {
	assigned map[int]Note
	cursor   int
}

// NewNoteAssigner creates an assigner with an empty assignment table.
func NewNoteAssigner() *NoteAssigner {
	return &NoteAssigner{assigned: make(map[int]Note)}
}

// NoteFor returns the note assigned to the neuron, assigning one on first
// use. Assignments are permanent for the neuron's lifetime.
func (a *NoteAssigner) NoteFor(id int) Note {
	if n, ok := a.assigned[id]; ok {
		return n
	}

	tier := tierForID(id)
	step := traversalPattern[a.cursor]
	a.cursor = (a.cursor + 1) % len(traversalPattern)

	n := Note{
		Name:         tierScales[tier][step],
		Tier:         tier,
		PatternIndex: step,
	}
	a.assigned[id] = n
	return n
}

// Forget drops a neuron's assignment. Called when the neuron is destroyed so
// a later id reuse starts fresh.
func (a *NoteAssigner) Forget(id int) {
	delete(a.assigned, id)
}
