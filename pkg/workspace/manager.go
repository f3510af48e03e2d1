package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/seqflow/internal/logging"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a diagram.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates diagram store access, ensuring safe concurrent operations.
// Per-id locks are reference counted and dropped once unused.
type Manager struct {
	store ports.DiagramStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given store.
func NewManager(store ports.DiagramStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking it.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Load retrieves a diagram.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Diagram, error) {
	var d *domain.Diagram
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		d, err = m.store.Load(ctx, id)
		return err
	})
	return d, err
}

// LoadOrCreate loads the diagram for id or, when it is missing, stores the
// result of create under id. Concurrent callers observe a single creation.
func (m *Manager) LoadOrCreate(ctx context.Context, id string, create func(context.Context) (*domain.Diagram, error)) (*domain.Diagram, error) {
	var d *domain.Diagram
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		d, err = m.store.Load(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDiagramNotFound) {
			return fmt.Errorf("failed to check diagram existence: %w", err)
		}

		d, err = create(ctx)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, id, d); err != nil {
			return fmt.Errorf("failed to store diagram: %w", err)
		}
		return nil
	})
	return d, err
}

// Save persists the diagram.
func (m *Manager) Save(ctx context.Context, id string, d *domain.Diagram) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Save(ctx, id, d)
	})
}

// Update loads, modifies and saves a diagram as one locked step.
func (m *Manager) Update(ctx context.Context, id string, fn func(*domain.Diagram) error) (*domain.Diagram, error) {
	var d *domain.Diagram
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		if d, err = m.store.Load(ctx, id); err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
		return m.store.Save(ctx, id, d)
	})
	return d, err
}

// Delete removes the diagram from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying diagram store.
func (m *Manager) Store() ports.DiagramStore {
	return m.store
}

// WithLock executes fn while holding the lock for id.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock, it will expire",
					"diagram_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
