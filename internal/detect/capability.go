package detect

import (
	"context"
	"log"
	"sync"
	"time"
)

// Status is the tri-state readiness of the morphological engine capability.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// EngineProvider is one delivery source for a morphological engine. Providers
// are attempted in a fixed priority order, once each, with no backoff.
type EngineProvider struct {
	Name string
	New  func(ctx context.Context) (Engine, error)
}

// Capability tracks whether a morphological engine is available. The
// detector factory polls it before choosing a strategy; it never blocks a
// detection request.
type Capability struct {
	mu     sync.Mutex
	status Status
	engine Engine
	source string
}

// NewCapability creates a capability in the loading state.
func NewCapability() *Capability {
	return &Capability{status: StatusLoading}
}

// ReadyCapability creates a capability already bound to an engine.
func ReadyCapability(e Engine) *Capability {
	return &Capability{status: StatusReady, engine: e, source: "preset"}
}

// FailedCapability creates a capability in the failed state, forcing the
// fallback strategy.
func FailedCapability() *Capability {
	return &Capability{status: StatusFailed}
}

// Probe attempts each provider sequentially with a per-attempt timeout. The
// first provider that succeeds binds the engine and marks the capability
// ready; if every provider fails the capability is marked failed and the
// detector falls back to pixel scanning.
func (c *Capability) Probe(ctx context.Context, providers []EngineProvider, perAttempt time.Duration) Status {
	c.mu.Lock()
	c.status = StatusLoading
	c.mu.Unlock()

	for _, p := range providers {
		attemptCtx, cancel := context.WithTimeout(ctx, perAttempt)
		engine, err := p.New(attemptCtx)
		cancel()
		if err != nil {
			log.Printf("morphological engine source %q unavailable: %v", p.Name, err)
			continue
		}

		c.mu.Lock()
		c.status = StatusReady
		c.engine = engine
		c.source = p.Name
		c.mu.Unlock()
		return StatusReady
	}

	c.mu.Lock()
	c.status = StatusFailed
	c.mu.Unlock()
	return StatusFailed
}

// Status returns the current readiness state.
func (c *Capability) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Engine returns the bound engine when the capability is ready.
func (c *Capability) Engine() (Engine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusReady || c.engine == nil {
		return nil, false
	}
	return c.engine, true
}

// Source names the provider the engine came from, for status reporting.
func (c *Capability) Source() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// DefaultProviders is the ordered provider list used at startup: the
// in-process native engine is the only source in this build, but the list
// keeps the seam open for engine deliveries that can genuinely fail.
func DefaultProviders() []EngineProvider {
	return []EngineProvider{
		{
			Name: "native",
			New: func(_ context.Context) (Engine, error) {
				return NewNativeEngine(), nil
			},
		},
	}
}
