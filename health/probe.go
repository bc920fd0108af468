// Package health tracks whether the triplestore answers queries.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pinger is anything that can check its upstream.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the last readiness check result.
type Status struct {
	Ready     bool      `json:"ready"`
	CheckedAt time.Time `json:"checked_at"`
	Error     string    `json:"error,omitempty"`
}

// Probe checks the triplestore on a schedule and caches the outcome.
type Probe struct {
	pinger  Pinger
	timeout time.Duration

	mu     sync.RWMutex
	status Status
	cron   *cron.Cron
}

// NewProbe creates a probe. Until the first check it reports not ready.
func NewProbe(pinger Pinger, timeout time.Duration) *Probe {
	return &Probe{pinger: pinger, timeout: timeout}
}

// Check pings the triplestore once and stores the result.
func (p *Probe) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status := Status{Ready: true, CheckedAt: time.Now()}
	if err := p.pinger.Ping(ctx); err != nil {
		slog.Warn("triplestore readiness check failed", "error", err)
		status.Ready = false
		status.Error = "triplestore unavailable"
	}

	p.mu.Lock()
	previous := p.status
	p.status = status
	p.mu.Unlock()
	if previous.Ready != status.Ready && !previous.CheckedAt.IsZero() {
		slog.Info("triplestore readiness changed", "ready", status.Ready)
	}
	return status
}

// Status returns the cached result of the last check.
func (p *Probe) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Start runs a check now and then on the given cron schedule.
func (p *Probe) Start(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { p.Check(context.Background()) }); err != nil {
		return err
	}
	p.Check(context.Background())
	c.Start()
	slog.Info("started scheduled readiness checks", "cron", schedule, "details", c.Entries())
	p.mu.Lock()
	p.cron = c
	p.mu.Unlock()
	return nil
}

// Stop halts scheduled checks and waits for a running one to finish.
func (p *Probe) Stop() {
	p.mu.Lock()
	c := p.cron
	p.cron = nil
	p.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
