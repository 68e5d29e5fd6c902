package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PortalMetrics holds the metric instruments shared by the gate and the
// notification engine. A nil *PortalMetrics is valid and records nothing.
type PortalMetrics struct {
	GateVerdicts       metric.Int64Counter // Gate decisions by verdict and role
	NotificationPushes metric.Int64Counter // Push events applied to the list
	MarkReadFailures   metric.Int64Counter // Remote read confirmations that failed
}

// NewPortalMetrics creates the instruments on the global meter provider.
// Without an installed provider the instruments are no-ops.
func NewPortalMetrics() (*PortalMetrics, error) {
	meter := otel.Meter("clubportal")

	gateVerdicts, err := meter.Int64Counter(
		"clubportal.gate.verdicts",
		metric.WithDescription("Route authorization decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	pushes, err := meter.Int64Counter(
		"clubportal.notifications.pushes",
		metric.WithDescription("Notifications received over the push channel"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"clubportal.notifications.mark_read_failures",
		metric.WithDescription("Failed remote read-state confirmations"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &PortalMetrics{
		GateVerdicts:       gateVerdicts,
		NotificationPushes: pushes,
		MarkReadFailures:   failures,
	}, nil
}

// RecordVerdict counts a gate decision.
func (m *PortalMetrics) RecordVerdict(ctx context.Context, verdict, role string) {
	if m == nil {
		return
	}
	m.GateVerdicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("verdict", verdict),
		attribute.String("role", role),
	))
}

// RecordPush counts an applied push notification.
func (m *PortalMetrics) RecordPush(ctx context.Context) {
	if m == nil {
		return
	}
	m.NotificationPushes.Add(ctx, 1)
}

// RecordMarkReadFailures counts failed read confirmations.
func (m *PortalMetrics) RecordMarkReadFailures(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.MarkReadFailures.Add(ctx, int64(n))
}
