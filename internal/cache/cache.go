package cache

import (
	"sync"

	"github.com/robfig/cron/v3"

	applog "goldloan/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// Manager sweeps expired entries from registered caches on a cron schedule.
type Manager struct {
	mu     sync.Mutex
	caches []Cleaner
	cron   *cron.Cron
	logger *applog.Logger
}

// NewManager creates a new cache manager
func NewManager(logger *applog.Logger) *Manager {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Manager{
		logger: logger.WithComponent(applog.ComponentCache),
	}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// Sweep removes expired entries from every registered cache and returns the
// number removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// StartCleanup schedules Sweep with a standard cron spec such as "@every 10m".
func (m *Manager) StartCleanup(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if n := m.Sweep(); n > 0 {
			m.logger.Debug("Cache cleanup completed", "entries_removed", n, applog.FieldOperation, applog.OpCleanup)
		}
	}); err != nil {
		return err
	}

	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()

	c.Start()
	m.logger.Info("Cache cleanup scheduled", "schedule", spec, "caches", len(m.caches))
	return nil
}

// Stop gracefully stops the cleanup routine, waiting for a running sweep.
func (m *Manager) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
		m.logger.Debug("Cache cleanup stopped")
	}
}
