package space

import (
	"fmt"
	"time"

	"github.com/Publicoprivado/snn/internal/sched"
)

// Throw integration parameters.
const (
	// ThrowStepPeriod is the cadence of throw position updates.
	ThrowStepPeriod = 16 * time.Millisecond

	// ThrowDamping is the per-step velocity retention factor.
	ThrowDamping = 0.88

	// ThrowRestSpeed is the speed below which a throw stops.
	ThrowRestSpeed = 0.01
)

// Throw animates a released entity along a decaying-velocity path. Each step
// moves the entity and re-reports the move to the detector, so proximity
// wiring happens mid-flight exactly as during a drag.
type Throw struct {
	store    PositionStore
	detector *Detector
	sched    *sched.Scheduler
}

// NewThrow creates a throw integrator over the given store and detector.
func NewThrow(store PositionStore, detector *Detector, s *sched.Scheduler) *Throw {
	return &Throw{store: store, detector: detector, sched: s}
}

// Release starts a throw for the entity with the given initial velocity in
// world units per step. The recurring task is registered under the entity's
// throw owner key, so destroying the entity cancels it.
func (t *Throw) Release(id int, velocity Vec3) {
	owner := ThrowOwner(id)
	t.sched.CancelOwner(owner) // a new release replaces any running throw

	vel := velocity
	var taskID sched.TaskID
	taskID = t.sched.Every(owner, ThrowStepPeriod, func(now time.Time) {
		pos, ok := t.store.Position(id)
		if !ok {
			t.sched.Cancel(taskID)
			return
		}

		t.store.SetPosition(id, pos.Add(vel))
		t.detector.ReportMove(id)

		vel = vel.Scale(ThrowDamping)
		if vel.Length() < ThrowRestSpeed {
			t.sched.Cancel(taskID)
		}
	})
}

// ThrowOwner is the scheduler owner key for an entity's throw task.
func ThrowOwner(id int) string {
	return fmt.Sprintf("throw:%d", id)
}
