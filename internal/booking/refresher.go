package booking

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Refresher re-fetches availability for a form on an interval, the
// self-hosted equivalent of refetch-on-window-refocus. It is the only mutator
// of the form's index besides post-submit reconciliation.
type Refresher struct {
	Form     *Form
	Interval time.Duration
	Logger   log.Logger

	// OnUpdate, when set, is called after each successful refresh with the
	// number of booked intervals now indexed.
	OnUpdate func(n int)
}

// Run refreshes until ctx is cancelled. The first refresh happens
// immediately.
func (r *Refresher) Run(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	t := time.NewTicker(r.Interval)
	defer t.Stop()

	r.tick(ctx, logger)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.tick(ctx, logger)
		}
	}
}

func (r *Refresher) tick(ctx context.Context, logger log.Logger) {
	if err := r.Form.Load(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		level.Warn(logger).Log("msg", "availability refresh failed", "err", err)
		return
	}
	if r.OnUpdate != nil {
		r.OnUpdate(r.Form.Index().Len())
	}
}
