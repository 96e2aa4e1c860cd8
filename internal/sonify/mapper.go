package sonify

import (
	"math"

	"github.com/Publicoprivado/snn/internal/constants"
)

// Mapper turns firing contexts into audio payloads. Note assignment is the
// only state it carries; the parameter mapping itself is pure.
type Mapper struct {
	notes *NoteAssigner
}

// NewMapper creates a mapper with a fresh note assigner.
func NewMapper() *Mapper {
	return &Mapper{notes: NewNoteAssigner()}
}

// Notes exposes the assigner so the simulation can release assignments when
// neurons are destroyed.
func (m *Mapper) Notes() *NoteAssigner {
	return m.notes
}

// Map assigns (or recalls) the neuron's note and computes the full payload.
func (m *Mapper) Map(ctx FiringContext) AudioPayload {
	return MapFiring(ctx, m.notes.NoteFor(ctx.NeuronID))
}

// MapFiring computes the audio parameters for a firing event. It is a pure
// function of the context and the neuron's note descriptor.
func MapFiring(ctx FiringContext, note Note) AudioPayload {
	w := clampParam(ctx.Weight)
	s := clampParam(ctx.Speed)

	var env Envelope
	var fx Effects
	var mod, velocity float64

	switch {
	case ctx.Isolated && ctx.HasDC:
		// Percussive decay: the bias-driven pulse of an unconnected neuron.
		env = Envelope{Attack: 0.001, Decay: 0.3, Sustain: 0, Release: 0}
		mod = 0.5
		fx = Effects{ReverbWet: 0, ChorusWet: 0.2}
		velocity = constants.IsolatedDCVelocity

	case ctx.Isolated:
		// Short decay with a touch of sustain, dry.
		env = Envelope{Attack: 0.005, Decay: 0.15, Sustain: 0.1, Release: 0}
		mod = 0.1
		fx = Effects{}
		velocity = constants.IsolatedQuietVelocity

	default:
		// Connected firing: envelope tracks the edge statistics. Decay and
		// sustain grow with weight, release with distance.
		env = Envelope{
			Attack:  0.01,
			Decay:   0.1 + w*0.5,
			Sustain: w * 0.5,
			Release: math.Min(1.5, 0.1+ctx.Distance*0.05),
		}
		mod = 0.2 + s*0.4
		fx = Effects{
			ReverbWet: math.Min(constants.MaxReverbWet, ctx.Distance*constants.ReverbDistanceFactor),
			ChorusWet: constants.ChorusBase + s*constants.ChorusSpeedFactor,
		}
		velocity = constants.ConnectedVelocityBase + w*constants.ConnectedVelocityScale
	}

	return AudioPayload{
		Note:     note,
		Envelope: env,
		ModIndex: mod,
		Effects:  fx,
		Velocity: velocity,
		Duration: math.Max(constants.MinNoteDuration, env.Sustain+env.Release),
		Isolated: ctx.Isolated,
		HasDC:    ctx.HasDC,
		NeuronID: ctx.NeuronID,
	}
}

// clampParam bounds weight/speed inputs to the envelope-shaping band. Raw
// stored edge values stay [0,1]; only the derived parameters are narrowed.
func clampParam(v float64) float64 {
	if v < constants.ParamClampMin {
		return constants.ParamClampMin
	}
	if v > constants.ParamClampMax {
		return constants.ParamClampMax
	}
	return v
}
