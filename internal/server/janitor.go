package server

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/opsdeck/sopgraph/pkg/cache"
)

// Janitor sweeps expired artifact entries out of the cache on a cron
// schedule. Backends that expire natively make the sweep a no-op.
type Janitor struct {
	cron   *cron.Cron
	cache  cache.Cache
	logger *log.Logger
}

// NewJanitor builds a janitor that runs cache.Cleanup on the given
// schedule. Standard cron expressions and descriptors like "@hourly" are
// accepted.
func NewJanitor(c cache.Cache, schedule string, logger *log.Logger) (*Janitor, error) {
	j := &Janitor{cron: cron.New(), cache: c, logger: logger}
	if _, err := j.cron.AddFunc(schedule, j.sweep); err != nil {
		return nil, fmt.Errorf("cache cleanup schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start launches the schedule in its own goroutine.
func (j *Janitor) Start() {
	j.cron.Start()
	j.logger.Debug("cache janitor started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Debug("cache janitor stopped")
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	if err := j.cache.Cleanup(ctx); err != nil {
		j.logger.Warn("cache cleanup", "err", err)
		return
	}
	j.logger.Debug("cache cleanup", "took", time.Since(start))
}
