package monitoring

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is the most recent resource sample of the machine running the server.
type HostStats struct {
	CPUPercent    float64   `json:"cpuPercent"`
	MemoryPercent float64   `json:"memoryPercent"`
	SampledAt     time.Time `json:"sampledAt"`
}

// StatUpdater periodically samples host CPU and memory usage.
type StatUpdater struct {
	interval time.Duration
	sample   func() (HostStats, error)

	mu     sync.RWMutex
	latest HostStats

	done     chan struct{}
	stopOnce sync.Once
}

// NewStatUpdater creates a StatUpdater that samples every interval.
func NewStatUpdater(interval time.Duration) *StatUpdater {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &StatUpdater{
		interval: interval,
		sample:   sampleHost,
		done:     make(chan struct{}),
	}
}

// Run starts the periodic updates. It returns after Stop.
func (su *StatUpdater) Run() {
	log.Info().Dur("interval", su.interval).Msg("Starting background stat updater...")
	ticker := time.NewTicker(su.interval)
	defer ticker.Stop()

	// Run once immediately on start
	su.update()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-ticker.C:
			su.update()
		}
	}
}

// Stop halts the periodic updates. It is safe to call more than once.
func (su *StatUpdater) Stop() {
	su.stopOnce.Do(func() { close(su.done) })
}

// Snapshot returns the latest sample. SampledAt is zero until the first
// sample succeeds.
func (su *StatUpdater) Snapshot() HostStats {
	su.mu.RLock()
	defer su.mu.RUnlock()
	return su.latest
}

func (su *StatUpdater) update() {
	stats, err := su.sample()
	if err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Failed to sample host stats")
		return
	}
	su.mu.Lock()
	su.latest = stats
	su.mu.Unlock()
}

func sampleHost() (HostStats, error) {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return HostStats{}, err
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return HostStats{}, err
	}

	stats := HostStats{MemoryPercent: vm.UsedPercent, SampledAt: time.Now().UTC()}
	if len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	return stats, nil
}
