package alert

import (
	"errors"
	"testing"
	"time"

	"github.com/everstacklabs/relay/internal/ledger"
	"github.com/everstacklabs/relay/internal/store"
)

type captureNotifier struct {
	got []Alert
	err error
}

func (c *captureNotifier) Notify(a Alert) error {
	c.got = append(c.got, a)
	return c.err
}

func TestExpensiveTransaction(t *testing.T) {
	l := ledger.New(store.NewMemory(), nil)
	n := &captureNotifier{}
	e := NewEmitter(DefaultThresholds(), l, n)

	rec := l.Write(ledger.Record{
		TenantID: "t1", ProviderID: "sora", Capability: "video",
		Units: 1, Cost: 1.5, CreatedAt: time.Now().UTC(),
	})

	alerts := e.Evaluate(rec, 500.0)

	var found *Alert
	for i := range alerts {
		if alerts[i].Type == TypeExpensiveTransaction {
			found = &alerts[i]
		}
	}
	if found == nil {
		t.Fatal("expected an expensive_transaction alert")
	}
	if found.Observed != 1.5 {
		t.Errorf("expected observed cost 1.5, got %g", found.Observed)
	}
	if found.TenantID != "t1" {
		t.Errorf("expected tenant id on alert, got %q", found.TenantID)
	}
	if len(n.got) != len(alerts) {
		t.Errorf("all alerts should reach the notifier: %d != %d", len(n.got), len(alerts))
	}
}

func TestGlobalDailyThreshold(t *testing.T) {
	l := ledger.New(store.NewMemory(), nil)
	e := NewEmitter(Thresholds{GlobalDaily: 10, GlobalMonthly: 1000, ExpensiveTransaction: 100}, l, &captureNotifier{})
	now := time.Now().UTC()

	var rec ledger.Record
	for i := 0; i < 11; i++ {
		rec = l.Write(ledger.Record{TenantID: "t1", ProviderID: "p1", Capability: "text", Cost: 1.0, CreatedAt: now})
	}

	alerts := e.Evaluate(rec, 500.0)
	if !hasType(alerts, TypeDailyLimit) {
		t.Error("expected a daily_limit alert once global daily spend exceeds threshold")
	}
	if hasType(alerts, TypeMonthlyLimit) {
		t.Error("monthly threshold not crossed, no monthly_limit alert expected")
	}
}

func TestTenantLimit(t *testing.T) {
	l := ledger.New(store.NewMemory(), nil)
	e := NewEmitter(Thresholds{GlobalDaily: 1000, GlobalMonthly: 10000, ExpensiveTransaction: 100}, l, &captureNotifier{})
	now := time.Now().UTC()

	rec := l.Write(ledger.Record{TenantID: "t1", ProviderID: "p1", Capability: "text", Cost: 6.0, CreatedAt: now})

	alerts := e.Evaluate(rec, 5.0)
	if !hasType(alerts, TypeTenantLimit) {
		t.Error("expected a tenant_limit alert")
	}
}

func TestNoAlertsUnderThresholds(t *testing.T) {
	l := ledger.New(store.NewMemory(), nil)
	e := NewEmitter(DefaultThresholds(), l, &captureNotifier{})

	rec := l.Write(ledger.Record{TenantID: "t1", ProviderID: "p1", Capability: "text", Cost: 0.01, CreatedAt: time.Now().UTC()})
	if alerts := e.Evaluate(rec, 500.0); len(alerts) != 0 {
		t.Errorf("expected no alerts, got %v", alerts)
	}
}

func TestNotifierFailureSwallowed(t *testing.T) {
	l := ledger.New(store.NewMemory(), nil)
	n := &captureNotifier{err: errors.New("sink down")}
	e := NewEmitter(DefaultThresholds(), l, n)

	rec := l.Write(ledger.Record{TenantID: "t1", ProviderID: "p1", Capability: "video", Cost: 2.0, CreatedAt: time.Now().UTC()})

	// Must not panic and must still report the alerts it raised.
	alerts := e.Evaluate(rec, 500.0)
	if len(alerts) == 0 {
		t.Error("alerts should be returned even when delivery fails")
	}
}

func hasType(alerts []Alert, tp Type) bool {
	for _, a := range alerts {
		if a.Type == tp {
			return true
		}
	}
	return false
}
