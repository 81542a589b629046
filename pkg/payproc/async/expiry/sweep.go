package async_expiry

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/code-payments/payproc-server/pkg/metrics"
	"github.com/code-payments/payproc-server/pkg/retry"
	"github.com/code-payments/payproc-server/pkg/retry/backoff"
)

const (
	expiredPreordersEventName = "ExpiredPreordersSweep"
	sweepDurationMetricName   = "PreorderExpiry.SweepDuration"
)

func (p *service) sweep(serviceCtx context.Context) {
	log := p.log.WithField("method", "sweep")

	ctx := serviceCtx
	if nr, ok := serviceCtx.Value(metrics.NewRelicContextKey).(*newrelic.Application); ok && nr != nil {
		m := nr.StartTransaction("async__preorder_expiry_service__sweep")
		defer m.End()
		ctx = newrelic.NewContext(serviceCtx, m)
	}

	retention := p.conf.retention.Get(ctx)
	start := time.Now()

	var deleted uint64
	attempts, err := retry.Retry(
		func() error {
			var err error
			deleted, err = p.expirer.Expire(ctx, retention)
			return err
		},
		retry.NonRetriableErrors(context.Canceled, context.DeadlineExceeded),
		retry.Limit(uint(p.conf.maxAttempts.Get(ctx))),
		retry.Backoff(backoff.BinaryExponential(time.Second), 30*time.Second),
	)
	if err != nil {
		log.WithError(err).WithField("attempts", attempts).Warn("failure expiring preorders")
		return
	}

	metrics.RecordDuration(ctx, sweepDurationMetricName, time.Since(start))
	metrics.RecordEvent(ctx, expiredPreordersEventName, map[string]interface{}{
		"deleted":   deleted,
		"retention": retention.String(),
	})

	log.WithField("deleted", deleted).Info("expired unpaid preorders")
}
