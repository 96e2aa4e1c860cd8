// Package sonify derives audio trigger parameters from firing context. It is
// purely computational: no I/O, no timing, no synthesis. The resulting
// AudioPayload is handed to whatever audio collaborator the simulation was
// wired with.
package sonify

// Envelope holds ADSR parameters in seconds (sustain is a level, 0-1).
type Envelope struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

// Effects holds wet levels for the two send effects, 0-1.
type Effects struct {
	ReverbWet float64 `json:"reverb_wet"`
	ChorusWet float64 `json:"chorus_wet"`
}

// AudioPayload is the complete parameter set for one triggered note.
type AudioPayload struct {
	Note     Note     `json:"note"`
	Envelope Envelope `json:"envelope"`
	ModIndex float64  `json:"mod_index"`
	Effects  Effects  `json:"effects"`
	Velocity float64  `json:"velocity"`
	Duration float64  `json:"duration"`
	Isolated bool     `json:"isolated"`
	HasDC    bool     `json:"has_dc"`
	NeuronID int      `json:"neuron_id"`
}

// FiringContext carries the aggregate edge statistics and flags describing a
// single firing event.
type FiringContext struct {
	NeuronID int
	Weight   float64 // average outgoing weight, raw [0,1]
	Speed    float64 // average outgoing speed, raw [0,1]
	Distance float64 // average spatial distance to targets, world units
	Isolated bool    // no outgoing edges
	HasDC    bool    // DC bias active at firing time
}
