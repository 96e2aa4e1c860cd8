package sonify

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestMapFiring_IsolatedWithDC(t *testing.T) {
	p := MapFiring(FiringContext{NeuronID: 1, Weight: 0.3, Speed: 0.9, Isolated: true, HasDC: true}, Note{Name: "D4"})

	if p.Envelope.Sustain != 0 || p.Envelope.Release != 0 {
		t.Errorf("percussive envelope should have no sustain/release, got %+v", p.Envelope)
	}
	if p.Effects.ReverbWet != 0 {
		t.Errorf("ReverbWet = %f, want 0", p.Effects.ReverbWet)
	}
	if !almostEqual(p.Effects.ChorusWet, 0.2) {
		t.Errorf("ChorusWet = %f, want 0.2", p.Effects.ChorusWet)
	}
	if !almostEqual(p.Velocity, 0.6) {
		t.Errorf("Velocity = %f, want 0.6", p.Velocity)
	}
	if !almostEqual(p.Duration, 0.1) {
		t.Errorf("Duration = %f, want floor 0.1", p.Duration)
	}
}

func TestMapFiring_IsolatedNoDC(t *testing.T) {
	p := MapFiring(FiringContext{NeuronID: 1, Weight: 0.15, Speed: 0.2, Isolated: true}, Note{Name: "D4"})

	if p.Effects.ReverbWet != 0 || p.Effects.ChorusWet != 0 {
		t.Errorf("isolated quiet firing should be dry, got %+v", p.Effects)
	}
	if !almostEqual(p.Velocity, 0.4) {
		t.Errorf("Velocity = %f, want 0.4", p.Velocity)
	}
	if p.Envelope.Sustain <= 0 {
		t.Errorf("expected a touch of sustain, got %f", p.Envelope.Sustain)
	}
}

func TestMapFiring_ConnectedEffects(t *testing.T) {
	p := MapFiring(FiringContext{NeuronID: 2, Weight: 0.5, Speed: 0.5, Distance: 10}, Note{Name: "C3"})

	if !almostEqual(p.Effects.ReverbWet, 0.3) {
		t.Errorf("ReverbWet = %f, want cap 0.3", p.Effects.ReverbWet)
	}
	if !almostEqual(p.Effects.ChorusWet, 0.15) {
		t.Errorf("ChorusWet = %f, want 0.15", p.Effects.ChorusWet)
	}
	if !almostEqual(p.Velocity, 0.5+0.5*0.3) {
		t.Errorf("Velocity = %f, want 0.65", p.Velocity)
	}
	if !almostEqual(p.Duration, p.Envelope.Sustain+p.Envelope.Release) {
		t.Errorf("Duration = %f, want sustain+release = %f", p.Duration, p.Envelope.Sustain+p.Envelope.Release)
	}
}

func TestMapFiring_ClampsWeightAndSpeed(t *testing.T) {
	low := MapFiring(FiringContext{Weight: 0.0, Speed: 0.0, Distance: 1}, Note{})
	lowClamped := MapFiring(FiringContext{Weight: 0.2, Speed: 0.2, Distance: 1}, Note{})
	if low != lowClamped {
		t.Errorf("weight/speed below 0.2 should map like 0.2")
	}

	high := MapFiring(FiringContext{Weight: 1.0, Speed: 1.0, Distance: 1}, Note{})
	highClamped := MapFiring(FiringContext{Weight: 0.8, Speed: 0.8, Distance: 1}, Note{})
	if high != highClamped {
		t.Errorf("weight/speed above 0.8 should map like 0.8")
	}
}

func TestMapFiring_EnvelopeGrowsWithWeightAndDistance(t *testing.T) {
	light := MapFiring(FiringContext{Weight: 0.3, Speed: 0.5, Distance: 1}, Note{})
	heavy := MapFiring(FiringContext{Weight: 0.7, Speed: 0.5, Distance: 1}, Note{})
	if heavy.Envelope.Decay <= light.Envelope.Decay || heavy.Envelope.Sustain <= light.Envelope.Sustain {
		t.Errorf("decay/sustain should grow with weight: light %+v heavy %+v", light.Envelope, heavy.Envelope)
	}

	near := MapFiring(FiringContext{Weight: 0.5, Speed: 0.5, Distance: 0.5}, Note{})
	far := MapFiring(FiringContext{Weight: 0.5, Speed: 0.5, Distance: 8}, Note{})
	if far.Envelope.Release <= near.Envelope.Release {
		t.Errorf("release should grow with distance: near %f far %f", near.Envelope.Release, far.Envelope.Release)
	}
}

func TestNoteAssigner_PatternCyclesAcrossNeurons(t *testing.T) {
	a := NewNoteAssigner()

	wantPattern := []int{0, 2, 4, 3, 1, 0}
	for i, id := range []int{1, 2, 3, 4, 5, 6} {
		n := a.NoteFor(id)
		if n.PatternIndex != wantPattern[i] {
			t.Errorf("neuron %d: pattern index = %d, want %d", id, n.PatternIndex, wantPattern[i])
		}
	}
}

func TestNoteAssigner_TierByIDModThree(t *testing.T) {
	a := NewNoteAssigner()

	tests := []struct {
		id   int
		tier Tier
	}{
		{3, TierMid},
		{1, TierHigh},
		{2, TierLow},
		{6, TierMid},
		{7, TierHigh},
	}
	for _, tt := range tests {
		if got := a.NoteFor(tt.id).Tier; got != tt.tier {
			t.Errorf("neuron %d: tier = %s, want %s", tt.id, got, tt.tier)
		}
	}
}

func TestNoteAssigner_AssignmentIsPermanent(t *testing.T) {
	a := NewNoteAssigner()

	first := a.NoteFor(1)
	// Interleave other assignments to advance the shared cursor.
	a.NoteFor(2)
	a.NoteFor(3)

	if again := a.NoteFor(1); again != first {
		t.Errorf("note changed across lookups: %+v then %+v", first, again)
	}
}
