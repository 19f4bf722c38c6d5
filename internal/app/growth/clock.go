package growth

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

const DefaultInterval = time.Second

type Target interface {
	AdvanceGrowth(now time.Time) int
}

// Clock matures crops on a fixed interval. Ticks never overlap.
type Clock struct {
	Target   Target
	Interval time.Duration
	Now      func() time.Time
	Logger   *log.Logger

	busy atomic.Bool
}

func (c *Clock) Run(ctx context.Context) error {
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := c.Tick(); n > 0 && c.Logger != nil {
				c.Logger.Printf("growth tick: %d crops ready", n)
			}
		}
	}
}

// Tick runs one growth pass and returns how many tiles ripened. A call that
// arrives while another pass is in flight returns 0.
func (c *Clock) Tick() int {
	if c.Target == nil || !c.busy.CompareAndSwap(false, true) {
		return 0
	}
	defer c.busy.Store(false)
	nowFn := c.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return c.Target.AdvanceGrowth(nowFn())
}
