package async_expiry

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/payproc-server/pkg/payproc/async"
)

// Expirer deletes preorders that were never paid within the retention window
type Expirer interface {
	Expire(ctx context.Context, retention time.Duration) (uint64, error)
}

type service struct {
	log     *logrus.Entry
	conf    *conf
	expirer Expirer
}

// New returns a service that sweeps expired preorders once at start and then
// on the configured cron schedule.
func New(expirer Expirer, configProvider ConfigProvider) async.Service {
	return &service{
		log:     logrus.StandardLogger().WithField("service", "preorder_expiry"),
		conf:    configProvider(),
		expirer: expirer,
	}
}

func (p *service) Start(ctx context.Context) error {
	spec := p.conf.schedule.Get(ctx)
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return errors.Wrapf(err, "invalid expiry schedule %q", spec)
	}

	p.sweep(ctx)

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	c.Schedule(schedule, cron.FuncJob(func() {
		p.sweep(ctx)
	}))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()

	return ctx.Err()
}
