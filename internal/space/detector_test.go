package space

import (
	"math"
	"testing"
	"time"

	"github.com/Publicoprivado/snn/internal/sched"
)

// pairRecorder captures resolver calls.
type pairRecorder struct {
	pairs [][2]int
}

func (r *pairRecorder) ResolveProximity(moverID, otherID int) {
	r.pairs = append(r.pairs, [2]int{moverID, otherID})
}

func TestDistance(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 6, Z: 3}
	if got := Distance(a, b); math.Abs(got-5) > 1e-9 {
		t.Errorf("Distance = %f, want 5", got)
	}
}

func TestReportMove_FiresForPairsUnderThreshold(t *testing.T) {
	store := NewMemoryStore()
	store.SetPosition(1, Vec3{X: 0})
	store.SetPosition(2, Vec3{X: 0.3})
	store.SetPosition(3, Vec3{X: 2})

	rec := &pairRecorder{}
	d := NewDetector(store, rec, 0.5)

	d.ReportMove(1)

	if len(rec.pairs) != 1 {
		t.Fatalf("pairs = %v, want exactly the close pair", rec.pairs)
	}
	if rec.pairs[0] != [2]int{1, 2} {
		t.Errorf("pair = %v, want mover first", rec.pairs[0])
	}
}

func TestReportMove_ExactThresholdIsNotProximate(t *testing.T) {
	store := NewMemoryStore()
	store.SetPosition(1, Vec3{X: 0})
	store.SetPosition(2, Vec3{X: 0.5})

	rec := &pairRecorder{}
	NewDetector(store, rec, 0.5).ReportMove(1)

	if len(rec.pairs) != 0 {
		t.Errorf("distance exactly at threshold reported: %v", rec.pairs)
	}
}

func TestReportMove_UnknownMover(t *testing.T) {
	rec := &pairRecorder{}
	NewDetector(NewMemoryStore(), rec, 0.5).ReportMove(9)
	if len(rec.pairs) != 0 {
		t.Errorf("unknown mover produced pairs: %v", rec.pairs)
	}
}

func TestThrow_ReportsEachIntermediatePosition(t *testing.T) {
	store := NewMemoryStore()
	store.SetPosition(1, Vec3{X: 0})
	store.SetPosition(2, Vec3{X: 1.2})

	rec := &pairRecorder{}
	d := NewDetector(store, rec, 0.5)
	s := sched.NewScheduler(time.Unix(0, 0))
	throw := NewThrow(store, d, s)

	// Throw entity 1 toward entity 2. It decays to rest after crossing
	// into proximity, and the mid-flight checks must have fired.
	throw.Release(1, Vec3{X: 0.3})
	s.Advance(time.Unix(0, 0).Add(2 * time.Second))

	pos, _ := store.Position(1)
	if pos.X <= 0.7 {
		t.Errorf("throw barely moved: x = %f", pos.X)
	}
	if len(rec.pairs) == 0 {
		t.Error("no proximity checks fired during the throw")
	}
	if s.Pending(ThrowOwner(1)) != 0 {
		t.Error("throw task still running after decay to rest")
	}
}

func TestThrow_StopsWhenEntityRemoved(t *testing.T) {
	store := NewMemoryStore()
	store.SetPosition(1, Vec3{})

	rec := &pairRecorder{}
	d := NewDetector(store, rec, 0.5)
	s := sched.NewScheduler(time.Unix(0, 0))
	throw := NewThrow(store, d, s)

	throw.Release(1, Vec3{X: 0.5})
	s.Advance(time.Unix(0, 0).Add(50 * time.Millisecond))
	store.Remove(1)
	s.Advance(time.Unix(0, 0).Add(2 * time.Second))

	if s.Pending(ThrowOwner(1)) != 0 {
		t.Error("throw task survived entity removal")
	}
}

func TestThrow_ReleaseReplacesRunningThrow(t *testing.T) {
	store := NewMemoryStore()
	store.SetPosition(1, Vec3{})

	d := NewDetector(store, &pairRecorder{}, 0.5)
	s := sched.NewScheduler(time.Unix(0, 0))
	throw := NewThrow(store, d, s)

	throw.Release(1, Vec3{X: 0.5})
	throw.Release(1, Vec3{Y: 0.5})

	if got := s.Pending(ThrowOwner(1)); got != 1 {
		t.Errorf("pending throw tasks = %d, want 1", got)
	}
}
