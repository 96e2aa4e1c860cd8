package sim

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/Publicoprivado/snn/internal/config"
	"github.com/Publicoprivado/snn/internal/sonify"
	"github.com/Publicoprivado/snn/internal/space"
	"github.com/Publicoprivado/snn/internal/trace"
)

type audioCapture struct {
	payloads []sonify.AudioPayload
}

func (a *audioCapture) Trigger(p sonify.AudioPayload) {
	a.payloads = append(a.payloads, p)
}

func newTestEngine(t *testing.T, audio *audioCapture, rec *trace.Recorder) *Engine {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Simulation.Seed = 42
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(cfg, log, Collaborators{Audio: audio, Recorder: rec}, time.Unix(0, 0))
}

func TestDCBias_DrivesPeriodicIsolatedFiring(t *testing.T) {
	audio := &audioCapture{}
	e := newTestEngine(t, audio, nil)

	id := e.AddUnit(space.Vec3{})
	e.SetDCInput(id, 1.0)

	// Full bias charges threshold in 500ms; with a 1s refractory the
	// neuron settles into a firing cadence of roughly 1.45s.
	e.RunFor(5 * time.Second)

	if len(audio.payloads) < 3 {
		t.Fatalf("payloads = %d, want several bias-driven firings", len(audio.payloads))
	}
	for _, p := range audio.payloads {
		if !p.Isolated || !p.HasDC {
			t.Errorf("payload flags = %+v, want isolated with DC", p)
		}
		if p.Velocity != 0.6 {
			t.Errorf("Velocity = %f, want 0.6", p.Velocity)
		}
	}
}

func TestChargeInvariant_NeverExceedsThreshold(t *testing.T) {
	e := newTestEngine(t, &audioCapture{}, nil)

	id := e.AddUnit(space.Vec3{})
	e.SetDCInput(id, 1.0)

	end := e.Now().Add(3 * time.Second)
	for now := e.Now().Add(16 * time.Millisecond); !now.After(end); now = now.Add(16 * time.Millisecond) {
		e.Step(now)
		snap, ok := e.Snapshot(id)
		if !ok {
			t.Fatal("snapshot lost")
		}
		if snap.Charge < 0 || snap.Charge > 1.0 {
			t.Fatalf("charge %f out of [0, 1] at %v", snap.Charge, now)
		}
	}
}

func TestRefractorySpacing_EndToEnd(t *testing.T) {
	audio := &audioCapture{}
	e := newTestEngine(t, audio, nil)

	id := e.AddUnit(space.Vec3{})
	e.SetDCInput(id, 1.0)

	var firings []time.Time
	end := e.Now().Add(6 * time.Second)
	wasFiring := false
	for now := e.Now().Add(10 * time.Millisecond); !now.After(end); now = now.Add(10 * time.Millisecond) {
		e.Step(now)
		snap, _ := e.Snapshot(id)
		if snap.Firing && !wasFiring {
			firings = append(firings, now)
		}
		wasFiring = snap.Firing
	}

	if len(firings) < 2 {
		t.Fatalf("observed %d firings, want at least 2", len(firings))
	}
	for i := 1; i < len(firings); i++ {
		if gap := firings[i].Sub(firings[i-1]); gap < 1000*time.Millisecond {
			t.Errorf("firing gap %v below refractory period", gap)
		}
	}
}

func TestProximityWiring_MoverBecomesSource(t *testing.T) {
	e := newTestEngine(t, &audioCapture{}, nil)

	a := e.AddUnit(space.Vec3{X: 0})
	b := e.AddUnit(space.Vec3{X: 2})

	if e.Network().EdgeCount() != 0 {
		t.Fatal("distant units should not be wired")
	}

	e.MoveUnit(b, space.Vec3{X: 0.3})

	if _, ok := e.Network().Edge(b, a); !ok {
		t.Error("mover->other edge not created")
	}
	if _, ok := e.Network().Edge(a, b); ok {
		t.Error("unexpected reverse edge")
	}
}

func TestThrowRelease_WiresMidFlight(t *testing.T) {
	e := newTestEngine(t, &audioCapture{}, nil)

	a := e.AddUnit(space.Vec3{X: 0})
	b := e.AddUnit(space.Vec3{X: 1.5})

	e.ReleaseUnit(a, space.Vec3{X: 0.25})
	e.RunFor(2 * time.Second)

	if _, ok := e.Network().Edge(a, b); !ok {
		t.Error("thrown unit passing by should have wired to the bystander")
	}
}

func TestCascade_FiringPropagatesDownstream(t *testing.T) {
	audio := &audioCapture{}
	e := newTestEngine(t, audio, nil)

	a := e.AddUnit(space.Vec3{X: 0})
	b := e.AddUnit(space.Vec3{X: 5})

	if _, err := e.Network().Connect(a, b); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := e.Network().SetWeight(a, b, 1.0); err != nil {
		t.Fatalf("SetWeight: %v", err)
	}

	e.Network().Fire(a)
	e.RunFor(100 * time.Millisecond)

	snap, _ := e.Snapshot(b)
	if !snap.Firing && !snap.Refractory {
		t.Error("full-weight delivery should have fired the target")
	}

	// Both firings land inside one rate-limit window: one payload only.
	if len(audio.payloads) != 1 {
		t.Errorf("payloads = %d, want 1", len(audio.payloads))
	}
}

func TestRemoveUnit_SilencesInFlightWork(t *testing.T) {
	audio := &audioCapture{}
	e := newTestEngine(t, audio, nil)

	a := e.AddUnit(space.Vec3{X: 0})
	b := e.AddUnit(space.Vec3{X: 5})
	e.Network().Connect(a, b)
	e.Network().SetWeight(a, b, 1.0)

	e.Network().Fire(a)
	e.RemoveUnit(b)

	// The pending delivery to b must be silently dropped.
	e.RunFor(500 * time.Millisecond)

	if _, ok := e.Snapshot(b); ok {
		t.Error("removed unit still visible")
	}
	if e.Network().EdgeCount() != 0 {
		t.Error("edges to removed unit survived")
	}
}

func TestRecorder_CapturesFirings(t *testing.T) {
	rec, err := trace.Open(filepath.Join(t.TempDir(), "trace.db"))
	if err != nil {
		t.Fatalf("trace.Open: %v", err)
	}
	t.Cleanup(func() { rec.Close() })

	e := newTestEngine(t, &audioCapture{}, rec)
	id := e.AddUnit(space.Vec3{})
	e.SetDCInput(id, 1.0)
	e.RunFor(2 * time.Second)

	events, err := rec.Events(0)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("no firings recorded")
	}
	if events[0].Neuron != id || !events[0].HasDC {
		t.Errorf("recorded event = %+v", events[0])
	}
}
