package metrics

import "github.com/prometheus/client_golang/prometheus"

// DispatchMetrics tracks notification email delivery outcomes per channel.
type DispatchMetrics struct {
	immediateSent   *prometheus.CounterVec
	immediateFailed *prometheus.CounterVec
	digestSent      prometheus.Counter
	digestSkipped   prometheus.Counter
	digestFailed    prometheus.Counter
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	immediateSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_immediate_sent",
		Help: "Immediate notification emails delivered, by notification type.",
	}, []string{"type"})
	immediateFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_immediate_failed",
		Help: "Immediate notification emails that failed to deliver, by notification type.",
	}, []string{"type"})
	digestSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_digest_sent",
		Help: "Digest emails delivered.",
	})
	digestSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_digest_skipped",
		Help: "Digest runs that skipped a user with no pending records.",
	})
	digestFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_digest_failed",
		Help: "Digest emails that failed to deliver.",
	})
	reg.MustRegister(immediateSent, immediateFailed, digestSent, digestSkipped, digestFailed)
	return &DispatchMetrics{
		immediateSent:   immediateSent,
		immediateFailed: immediateFailed,
		digestSent:      digestSent,
		digestSkipped:   digestSkipped,
		digestFailed:    digestFailed,
	}
}

// IncImmediateSent counts one delivered immediate email.
func (d *DispatchMetrics) IncImmediateSent(notificationType string) {
	if d == nil || d.immediateSent == nil {
		return
	}
	d.immediateSent.WithLabelValues(jobLabel(notificationType)).Inc()
}

// IncImmediateFailed counts one failed immediate email.
func (d *DispatchMetrics) IncImmediateFailed(notificationType string) {
	if d == nil || d.immediateFailed == nil {
		return
	}
	d.immediateFailed.WithLabelValues(jobLabel(notificationType)).Inc()
}

// IncDigestSent counts one delivered digest email.
func (d *DispatchMetrics) IncDigestSent() {
	if d == nil || d.digestSent == nil {
		return
	}
	d.digestSent.Inc()
}

// IncDigestSkipped counts one user skipped for lack of pending records.
func (d *DispatchMetrics) IncDigestSkipped() {
	if d == nil || d.digestSkipped == nil {
		return
	}
	d.digestSkipped.Inc()
}

// IncDigestFailed counts one failed digest email.
func (d *DispatchMetrics) IncDigestFailed() {
	if d == nil || d.digestFailed == nil {
		return
	}
	d.digestFailed.Inc()
}
