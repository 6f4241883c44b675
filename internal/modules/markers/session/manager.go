package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"stationmap/internal/modules/markers/source"
	"stationmap/internal/modules/markers/stationclient"
)

// Syncer pushes local marker changes to the station service.
type Syncer interface {
	Create(ctx context.Context, p stationclient.Payload) (stationclient.Record, error)
	Update(ctx context.Context, id string, patch stationclient.Payload) (stationclient.Record, error)
}

// Publisher announces committed marker changes.
type Publisher interface {
	Publish(ctx context.Context, v any) error
}

type Options struct {
	Source      source.Source
	Syncer      Syncer    // nil disables remote sync
	Publisher   Publisher // nil disables events
	FormPrefill bool
	TTL         time.Duration
	LoadTimeout time.Duration
	Logger      *slog.Logger
}

type deps struct {
	source      source.Source
	syncer      Syncer
	publisher   Publisher
	formPrefill bool
	logger      *slog.Logger
	now         func() time.Time
}

// Manager keeps one Session per browser and evicts idle ones.
type Manager struct {
	deps        *deps
	ttl         time.Duration
	loadTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	loadTimeout := opts.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = 10 * time.Second
	}
	src := opts.Source
	if src == nil {
		src = source.DefaultSeed()
	}
	d := &deps{
		source:      src,
		syncer:      opts.Syncer,
		publisher:   opts.Publisher,
		formPrefill: opts.FormPrefill,
		logger:      logger,
		now:         time.Now,
	}
	return &Manager{
		deps:        d,
		ttl:         ttl,
		loadTimeout: loadTimeout,
		sessions:    make(map[string]*Session),
	}
}

// Get returns the live session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, starting a new one when id is
// unknown. The second result reports whether a session was created.
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s, false
		}
	}
	return m.create(), true
}

func (m *Manager) create() *Session {
	s := newSession(uuid.NewString(), m.deps)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.deps.logger.Debug("session started", "session", s.id)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.loadTimeout)
		defer cancel()
		s.load(ctx)
	}()
	return s
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run evicts sessions idle for longer than the TTL until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.evictIdle(); n > 0 {
				m.deps.logger.Info("evicted idle sessions", "count", n)
			}
		}
	}
}

func (m *Manager) evictIdle() int {
	now := m.deps.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.idleSince(now) > m.ttl {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
