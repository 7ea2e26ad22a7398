package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps process-local counters for the admin metrics
// endpoint. All methods are safe for concurrent use.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	totalDurationMs uint64

	swipesAccepted     uint64
	swipesDuplicate    uint64
	swipesUnrecognized uint64
	ledgerFailures     uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) SwipeAccepted()     { atomic.AddUint64(&c.swipesAccepted, 1) }
func (c *Collector) SwipeDuplicate()    { atomic.AddUint64(&c.swipesDuplicate, 1) }
func (c *Collector) SwipeUnrecognized() { atomic.AddUint64(&c.swipesUnrecognized, 1) }
func (c *Collector) LedgerFailure()     { atomic.AddUint64(&c.ledgerFailures, 1) }

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":      total,
		"errorsTotal":        atomic.LoadUint64(&c.errorRequests),
		"avgDurationMs":      avg,
		"swipesAccepted":     atomic.LoadUint64(&c.swipesAccepted),
		"swipesDuplicate":    atomic.LoadUint64(&c.swipesDuplicate),
		"swipesUnrecognized": atomic.LoadUint64(&c.swipesUnrecognized),
		"ledgerFailures":     atomic.LoadUint64(&c.ledgerFailures),
	}
}
