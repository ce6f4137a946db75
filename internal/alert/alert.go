// Package alert raises threshold-crossing alerts from usage aggregate
// updates. Alerts are ephemeral: generated, handed to the notifier, and
// discarded. Delivery failure never affects dispatch.
package alert

import (
	"log/slog"
	"time"

	"github.com/everstacklabs/relay/internal/ledger"
)

// Type classifies an alert.
type Type string

const (
	TypeDailyLimit           Type = "daily_limit"
	TypeMonthlyLimit         Type = "monthly_limit"
	TypeTenantLimit          Type = "tenant_limit"
	TypeExpensiveTransaction Type = "expensive_transaction"
)

// Alert is one threshold crossing.
type Alert struct {
	Type      Type      `json:"type"`
	Severity  string    `json:"severity"`
	Threshold float64   `json:"threshold"`
	Observed  float64   `json:"observed"`
	TenantID  string    `json:"tenant_id,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier is the external notification collaborator.
type Notifier interface {
	Notify(a Alert) error
}

// LogNotifier writes alerts to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(a Alert) error {
	slog.Warn("cost alert",
		"type", a.Type,
		"severity", a.Severity,
		"threshold", a.Threshold,
		"observed", a.Observed,
		"tenant", a.TenantID)
	return nil
}

// Thresholds are the global alerting limits.
type Thresholds struct {
	GlobalDaily          float64 `mapstructure:"global_daily"`
	GlobalMonthly        float64 `mapstructure:"global_monthly"`
	ExpensiveTransaction float64 `mapstructure:"expensive_transaction"`
}

// DefaultThresholds returns the stock alerting limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GlobalDaily:          100.0,
		GlobalMonthly:        2000.0,
		ExpensiveTransaction: 1.0,
	}
}

// Emitter evaluates thresholds after each ledger write.
type Emitter struct {
	thresholds Thresholds
	ledger     *ledger.Ledger
	notifier   Notifier
}

// NewEmitter creates an emitter. A nil notifier falls back to LogNotifier.
func NewEmitter(t Thresholds, l *ledger.Ledger, n Notifier) *Emitter {
	if n == nil {
		n = LogNotifier{}
	}
	return &Emitter{thresholds: t, ledger: l, notifier: n}
}

// Evaluate inspects the aggregates touched by rec and emits any alerts.
// tenantMonthlyLimit is the tenant's plan cap. Returns the alerts raised.
func (e *Emitter) Evaluate(rec ledger.Record, tenantMonthlyLimit float64) []Alert {
	var alerts []Alert
	at := rec.CreatedAt

	if day := e.ledger.Aggregate(ledger.ScopeGlobal, ledger.PeriodDay, "", at); day.Cost > e.thresholds.GlobalDaily {
		alerts = append(alerts, Alert{
			Type: TypeDailyLimit, Severity: "high",
			Threshold: e.thresholds.GlobalDaily, Observed: day.Cost, At: at,
		})
	}

	if month := e.ledger.Aggregate(ledger.ScopeGlobal, ledger.PeriodMonth, "", at); month.Cost > e.thresholds.GlobalMonthly {
		alerts = append(alerts, Alert{
			Type: TypeMonthlyLimit, Severity: "critical",
			Threshold: e.thresholds.GlobalMonthly, Observed: month.Cost, At: at,
		})
	}

	if tenantMonthlyLimit > 0 {
		if tm := e.ledger.Aggregate(ledger.ScopeTenant, ledger.PeriodMonth, rec.TenantID, at); tm.Cost > tenantMonthlyLimit {
			alerts = append(alerts, Alert{
				Type: TypeTenantLimit, Severity: "high",
				Threshold: tenantMonthlyLimit, Observed: tm.Cost, TenantID: rec.TenantID, At: at,
			})
		}
	}

	if rec.Cost > e.thresholds.ExpensiveTransaction {
		alerts = append(alerts, Alert{
			Type: TypeExpensiveTransaction, Severity: "medium",
			Threshold: e.thresholds.ExpensiveTransaction, Observed: rec.Cost, TenantID: rec.TenantID, At: at,
		})
	}

	for _, a := range alerts {
		if err := e.notifier.Notify(a); err != nil {
			slog.Warn("alert delivery failed", "type", a.Type, "error", err)
		}
	}

	return alerts
}
