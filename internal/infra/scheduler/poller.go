package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// pollTimeout bounds a single cycle. A cycle that overruns is abandoned and
// the next tick retries; overlapping completions are tolerated because the
// queue replacement downstream is idempotent.
const pollTimeout = 10 * time.Second

// OrderPoller is the application-side contract the poller drives.
type OrderPoller interface {
	PollOnce(ctx context.Context) error
}

// IntakePoller runs the polling cycle on a fixed cadence, plus once
// immediately on Start. The fixed interval is the whole retry policy: a
// failed cycle is simply retried on the next tick, no backoff.
type IntakePoller struct {
	cronEngine *cron.Cron
	intake     OrderPoller
	logger     *logrus.Entry
	interval   time.Duration
}

func NewIntakePoller(intake OrderPoller, logger *logrus.Entry, interval time.Duration) *IntakePoller {
	return &IntakePoller{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		intake:     intake,
		logger:     logger,
		interval:   interval,
	}
}

func (p *IntakePoller) Start() {
	p.logger.WithField("interval", p.interval.String()).Info("starting order intake poller")

	// First observation runs right away so a fresh process seeds its ledger
	// before the first scheduled tick.
	p.runOnce()

	_, err := p.cronEngine.AddFunc(fmt.Sprintf("@every %s", p.interval), p.runOnce)
	if err != nil {
		p.logger.WithError(err).Fatal("could not schedule intake poll job")
	}

	p.cronEngine.Start()
	p.logger.Info("order intake poller started")
}

func (p *IntakePoller) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()
	if err := p.intake.PollOnce(ctx); err != nil {
		// Swallowed: the next tick retries unconditionally.
		p.logger.WithError(err).Debug("poll cycle failed")
	}
}

// Stop halts scheduling and waits for a running cycle to drain. An in-flight
// fetch from the final cycle is allowed to apply; downstream state is
// tolerant of stale data.
func (p *IntakePoller) Stop() {
	p.logger.Info("stopping order intake poller")
	ctx := p.cronEngine.Stop()
	<-ctx.Done()
	p.logger.Info("order intake poller stopped")
}
