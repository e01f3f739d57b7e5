// Package health reports the reachability of the service's dependencies.
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	StatusHealthy       = "healthy"
	StatusUnhealthy     = "unhealthy"
	StatusNotConfigured = "not configured"
)

// Probe is a dependency that can be pinged, such as an object store or Redis.
type Probe interface {
	Name() string
	Ping(ctx context.Context) error
}

type Checker struct {
	probes   []Probe
	disabled []string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewChecker bounds every ping by timeout.
func NewChecker(timeout time.Duration, logger *zap.Logger) *Checker {
	return &Checker{timeout: timeout, logger: logger}
}

func (c *Checker) Register(p Probe) {
	c.probes = append(c.probes, p)
}

// Disabled lists a dependency that is known but switched off in config.
func (c *Checker) Disabled(name string) {
	c.disabled = append(c.disabled, name)
}

// Check pings every probe concurrently and returns one status per name.
func (c *Checker) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status := make(map[string]string, len(c.probes)+len(c.disabled))
	for _, name := range c.disabled {
		status[name] = StatusNotConfigured
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, p := range c.probes {
		wg.Add(1)
		go func(p Probe) {
			defer wg.Done()
			result := StatusHealthy
			if err := p.Ping(ctx); err != nil {
				c.logger.Warn("Health probe failed", zap.String("service", p.Name()), zap.Error(err))
				result = StatusUnhealthy + ": " + err.Error()
			}
			mu.Lock()
			status[p.Name()] = result
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	return status
}

// Overall is healthy unless some configured service is failing.
func Overall(services map[string]string) string {
	for _, status := range services {
		if status != StatusHealthy && status != StatusNotConfigured {
			return StatusUnhealthy
		}
	}
	return StatusHealthy
}
