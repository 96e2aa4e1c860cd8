// Package constants provides named constants used throughout the snn codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

import "time"

// Neuron state machine constants.
const (
	// FiringThreshold is the charge level at which a neuron fires.
	// Charge is clamped to this value; it never exceeds it.
	FiringThreshold = 1.0

	// RefractoryPeriod is the window after a firing during which a neuron
	// accepts no charge and cannot re-fire.
	RefractoryPeriod = 1000 * time.Millisecond

	// FiringDuration is how long a neuron stays in the Firing state before
	// returning to Idle with charge reset to zero.
	FiringDuration = 300 * time.Millisecond

	// StuckStateFactor multiplies RefractoryPeriod to form the stuck-state
	// deadline. A neuron still marked Firing past this deadline is hard-reset.
	StuckStateFactor = 2

	// BiasTickPeriod is the recurring interval at which DC bias charge is
	// applied while a neuron's DC input is above zero.
	BiasTickPeriod = 50 * time.Millisecond

	// BiasChargeFactor scales DC input into per-tick charge: each bias tick
	// delivers dcInput * BiasChargeFactor.
	BiasChargeFactor = 0.1
)

// Connection graph constants.
const (
	// DefaultEdgeWeight is the weight assigned to newly created connections.
	DefaultEdgeWeight = 0.2

	// MinRandomSpeed and MaxRandomSpeed bound the randomized speed assigned
	// to newly created connections.
	MinRandomSpeed = 0.3
	MaxRandomSpeed = 0.8

	// ProximityThreshold is the world-unit distance under which two neurons
	// are auto-wired by the proximity detector.
	ProximityThreshold = 0.5

	// ValidationSweepPeriod is the interval of the periodic sweep that prunes
	// edges whose endpoints no longer resolve to live neurons.
	ValidationSweepPeriod = 5 * time.Second
)

// Propagation constants.
const (
	// MaxDeliveryJitter is the upper bound of the random delay added to each
	// charge delivery, decorrelating simultaneous arrivals.
	MaxDeliveryJitter = 50 * time.Millisecond

	// Fallback edge statistics for a firing neuron with no outgoing edges.
	// The DC variant feeds a percussive envelope; the silent variant a short
	// decaying one, so the two cases stay audibly distinct.
	IsolatedDCWeight    = 0.3
	IsolatedDCSpeed     = 0.9
	IsolatedQuietWeight = 0.15
	IsolatedQuietSpeed  = 0.2
)

// Speed-to-duration mapping for edge traversal visuals. Speed values in
// [SpeedDomainMin, SpeedDomainMax] map affinely and inversely onto durations
// in [DurationRangeMax, DurationRangeMin] time units.
const (
	SpeedDomainMin   = 0.1
	SpeedDomainMax   = 0.9
	DurationRangeMax = 4.0
	DurationRangeMin = 0.6
)

// Sonification constants.
const (
	// ParamClampMin and ParamClampMax bound weight/speed inputs before they
	// shape envelopes and effect levels. Raw stored edge values stay [0,1];
	// the clamp keeps derived parameters in a musically sane band.
	ParamClampMin = 0.2
	ParamClampMax = 0.8

	// MaxReverbWet caps the distance-driven reverb level.
	MaxReverbWet = 0.3

	// ReverbDistanceFactor scales target distance into reverb wet level.
	ReverbDistanceFactor = 0.1

	// ChorusBase and ChorusSpeedFactor shape the speed-driven chorus level
	// for connected firings.
	ChorusBase        = 0.1
	ChorusSpeedFactor = 0.1

	// MinNoteDuration is the floor for a triggered note's duration.
	MinNoteDuration = 0.1

	// Velocities per firing context.
	IsolatedDCVelocity     = 0.6
	IsolatedQuietVelocity  = 0.4
	ConnectedVelocityBase  = 0.5
	ConnectedVelocityScale = 0.3

	// MinNoteInterval is the process-wide minimum spacing between triggered
	// notes. Requests arriving sooner are dropped, not queued.
	MinNoteInterval = 200 * time.Millisecond
)

// DCInputPrecision is the number of decimal places DC input is rounded to.
const DCInputPrecision = 2
