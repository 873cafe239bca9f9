package relay

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kowshik-thatinati/privacy-calls/internal/log"
)

// Reaper periodically sweeps idle rooms out of the relay.
type Reaper struct {
	relay    *Relay
	interval time.Duration
	clock    clockwork.Clock
	logger   *log.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewReaper(
	relay *Relay,
	interval time.Duration,
	clock clockwork.Clock,
	logger *log.Logger,
) *Reaper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Reaper{
		relay:    relay,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

func (r *Reaper) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	go r.run(ctx)
	r.logger.Info("reaper started", log.Duration("interval", r.interval))
}

// Stop halts the sweep loop; it does not expire anything on the way out.
func (r *Reaper) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.logger.Info("reaper stopped")
}

func (r *Reaper) run(ctx context.Context) {
	defer close(r.done)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.relay.ExpireIdleRooms(ctx)
		}
	}
}
