package command

import (
	"sync"
	"testing"
	"time"

	"dronefarm/internal/domain/farm"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type metricsStub struct {
	mu       sync.Mutex
	success  map[string]int
	rejected map[string]int
}

func (m *metricsStub) RecordSuccess(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.success == nil {
		m.success = map[string]int{}
	}
	m.success[name]++
}

func (m *metricsStub) RecordRejected(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejected == nil {
		m.rejected = map[string]int{}
	}
	m.rejected[name]++
}

type publisherStub struct {
	mu    sync.Mutex
	snaps []farm.Snapshot
}

func (p *publisherStub) Publish(snap farm.Snapshot) {
	p.mu.Lock()
	p.snaps = append(p.snaps, snap)
	p.mu.Unlock()
}

func (p *publisherStub) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snaps)
}

func newTestEngine(t *testing.T, mutate func(*Config)) (*Engine, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	cfg := Config{
		Farm:    farm.DefaultConfig(),
		Catalog: farm.DefaultCatalog(),
		Now:     clock.Now,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, clock
}
