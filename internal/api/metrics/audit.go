package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/infrastructure/queue"
)

// AuditHooks returns dispatcher hooks that feed the audit metrics.
func AuditHooks() queue.Hooks {
	return queue.Hooks{
		OnDrop: func(e domain.AuditEvent) {
			AuditEventsTotal.WithLabelValues(string(e.Action), "dropped").Inc()
		},
		OnWrite: func(e domain.AuditEvent, took time.Duration, err error) {
			AuditWriteDuration.Observe(took.Seconds())
			outcome := "written"
			if err != nil {
				outcome = "failed"
			}
			AuditEventsTotal.WithLabelValues(string(e.Action), outcome).Inc()
		},
	}
}

// SampleAuditQueue records pending() into AuditQueueDepth every interval
// until ctx is cancelled.
func SampleAuditQueue(ctx context.Context, pending func() []int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for i, n := range pending() {
				AuditQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(n))
			}
		}
	}
}
