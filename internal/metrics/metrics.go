// Package metrics holds in-process counters surfaced through logs and the
// components that own them.
package metrics

import (
	"sync/atomic"
	"time"
)

// Counter is safe for concurrent use. The zero value is ready.
type Counter struct {
	value atomic.Uint64
}

func (c *Counter) Inc() {
	c.value.Add(1)
}

func (c *Counter) Load() uint64 {
	return c.value.Load()
}

type Timer struct {
	start time.Time
	now   func() time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now(), now: time.Now}
}

func (t *Timer) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}
