package bridge

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Watchdog probes the upstream health endpoint on a schedule and caches
// the last observation. It only adds history to /health; the per-request
// probe there is unchanged.
type Watchdog struct {
	relay    *Relay
	schedule string
	logger   zerolog.Logger
	cron     *cron.Cron

	mu       sync.RWMutex
	lastSeen time.Time
	up       bool
}

// NewWatchdog creates a watchdog with a cron schedule such as "@every 30s".
func NewWatchdog(relay *Relay, schedule string, logger zerolog.Logger) *Watchdog {
	return &Watchdog{
		relay:    relay,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start registers the probe and begins the schedule.
func (w *Watchdog) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.probe); err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

// Stop halts the schedule and waits for an in-flight probe to finish.
func (w *Watchdog) Stop() {
	<-w.cron.Stop().Done()
}

func (w *Watchdog) probe() {
	_, err := w.relay.CheckHealth()

	w.mu.Lock()
	w.lastSeen = time.Now()
	w.up = err == nil
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn().Err(err).Msg("Upstream health probe failed")
	}
}

// Snapshot returns the last probe time and result. ok is false until the
// first probe has run.
func (w *Watchdog) Snapshot() (lastSeen time.Time, up bool, ok bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastSeen, w.up, !w.lastSeen.IsZero()
}
