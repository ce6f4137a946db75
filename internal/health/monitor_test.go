package health

import (
	"testing"
	"time"
)

func TestTripsAfterThreshold(t *testing.T) {
	m := NewMonitor(3)
	now := time.Now()

	m.RecordFailure("p1", now)
	m.RecordFailure("p1", now)
	if !m.IsAvailable("p1") {
		t.Fatal("provider should still be available after 2 failures")
	}

	m.RecordFailure("p1", now)
	if m.IsAvailable("p1") {
		t.Fatal("provider should be unavailable after 3 consecutive failures")
	}
}

func TestSuccessResetsCount(t *testing.T) {
	m := NewMonitor(3)
	now := time.Now()

	m.RecordFailure("p1", now)
	m.RecordFailure("p1", now)
	m.RecordSuccess("p1")
	m.RecordFailure("p1", now)
	m.RecordFailure("p1", now)

	if !m.IsAvailable("p1") {
		t.Fatal("success should have reset the consecutive-failure count")
	}
}

func TestSuccessRestoresTrippedProvider(t *testing.T) {
	m := NewMonitor(3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		m.RecordFailure("p1", now)
	}
	if m.IsAvailable("p1") {
		t.Fatal("provider should be tripped")
	}

	m.RecordSuccess("p1")
	if !m.IsAvailable("p1") {
		t.Fatal("a single success should restore availability")
	}
}

func TestUnknownProviderAvailable(t *testing.T) {
	m := NewMonitor(3)
	if !m.IsAvailable("never-seen") {
		t.Fatal("provider with no record should be available")
	}
}

func TestResetAll(t *testing.T) {
	m := NewMonitor(3)
	now := time.Now()

	for _, id := range []string{"p1", "p2"} {
		for i := 0; i < 3; i++ {
			m.RecordFailure(id, now)
		}
	}

	m.ResetAll()

	for _, id := range []string{"p1", "p2"} {
		if !m.IsAvailable(id) {
			t.Errorf("%s should be available after ResetAll", id)
		}
	}
	if len(m.Snapshot()) != 0 {
		t.Error("expected no records after ResetAll")
	}
}

func TestSnapshotOrdered(t *testing.T) {
	m := NewMonitor(3)
	now := time.Now()

	m.RecordFailure("zeta", now)
	m.RecordFailure("alpha", now)
	m.RecordSuccess("mid")

	snap := m.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 records, got %d", len(snap))
	}
	if snap[0].ProviderID != "alpha" || snap[2].ProviderID != "zeta" {
		t.Errorf("snapshot not ordered by id: %v", snap)
	}
	if snap[0].ConsecutiveFailures != 1 {
		t.Errorf("alpha should have 1 failure, got %d", snap[0].ConsecutiveFailures)
	}
}
