package session

import (
	"context"
	"sync"
	"time"

	"stationmap/internal/modules/markers/editor"
	"stationmap/internal/modules/markers/interaction"
	"stationmap/internal/modules/markers/stationclient"
	"stationmap/internal/modules/markers/store"
	"stationmap/internal/modules/markers/types"
)

const (
	ActionAdded   = "added"
	ActionEdited  = "edited"
	ActionDeleted = "deleted"
)

// Event describes a committed marker change.
type Event struct {
	Session string       `json:"session"`
	Action  string       `json:"action"`
	Index   int          `json:"index"`
	Marker  types.Marker `json:"marker"`
	Version uint64       `json:"version"`
	At      time.Time    `json:"at"`
}

// View is a point-in-time copy of a session's state.
type View struct {
	Mode       types.Mode
	Selected   int
	HasSel     bool
	Version    uint64
	Loading    bool
	Markers    []types.Marker
	FormActive bool
	Fields     editor.Fields
}

// Session owns the marker state of one browser. Its events are applied one at
// a time under mu.
type Session struct {
	id   string
	deps *deps

	mu       sync.Mutex
	store    store.Store
	ctrl     *interaction.Controller
	form     *editor.Form
	loading  bool
	lastSeen time.Time

	// prepended counts markers the late initial load put in front of the
	// user's own.
	prepended int

	loaded chan struct{}
}

func newSession(id string, d *deps) *Session {
	return &Session{
		id:       id,
		deps:     d,
		store:    store.New(nil),
		ctrl:     interaction.New(),
		form:     editor.New(d.formPrefill),
		loading:  true,
		lastSeen: d.now(),
		loaded:   make(chan struct{}),
	}
}

func (s *Session) ID() string { return s.id }

// WaitLoaded blocks until the initial load has been applied or ctx ends.
func (s *Session) WaitLoaded(ctx context.Context) error {
	select {
	case <-s.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	sel, hasSel := s.ctrl.Selection()
	return View{
		Mode:       s.ctrl.Mode(),
		Selected:   sel,
		HasSel:     hasSel,
		Version:    s.store.Version(),
		Loading:    s.loading,
		Markers:    s.store.Markers(),
		FormActive: s.form.Active(s.ctrl),
		Fields:     s.form.Fields(),
	}
}

// MarkerAt returns the marker currently at index i.
func (s *Session) MarkerAt(i int) (types.Marker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.At(i)
}

func (s *Session) Command(cmd types.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.ctrl.Apply(cmd)
}

// MapClick places a marker at p when the session is adding. Placed markers
// are pushed to the station service and announced when those are enabled.
func (s *Session) MapClick(ctx context.Context, p types.Position) bool {
	s.mu.Lock()
	s.touchLocked()
	next, placed := s.ctrl.MapClick(s.store, p)
	s.store = next
	index := next.Len() - 1
	version := next.Version()
	m, _ := next.At(index)
	shift := s.prepended
	s.mu.Unlock()

	if !placed {
		return false
	}
	s.publish(ctx, ActionAdded, index, m, version)
	s.createRemote(ctx, index, shift, m)
	return true
}

// MarkerClick selects marker i when editing or deleting and activates the
// form for it.
func (s *Session) MarkerClick(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if !s.ctrl.MarkerClick(s.store, i) {
		return false
	}
	m, _ := s.store.At(i)
	s.form.Activate(m)
	return true
}

func (s *Session) SetFields(f editor.Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.form.SetFields(f)
}

func (s *Session) Save(ctx context.Context) (editor.Result, error) {
	s.mu.Lock()
	s.touchLocked()
	next, res, err := s.form.Save(s.store, s.ctrl)
	s.store = next
	version := next.Version()
	s.mu.Unlock()

	if err != nil {
		return res, err
	}
	s.publish(ctx, ActionEdited, res.Index, res.Marker, version)
	s.updateRemote(ctx, res.Marker)
	return res, nil
}

func (s *Session) Delete(ctx context.Context) (editor.Result, error) {
	s.mu.Lock()
	s.touchLocked()
	next, res, err := s.form.Delete(s.store, s.ctrl)
	s.store = next
	version := next.Version()
	s.mu.Unlock()

	if err != nil {
		return res, err
	}
	s.publish(ctx, ActionDeleted, res.Index, res.Marker, version)
	return res, nil
}

func (s *Session) load(ctx context.Context) {
	defer close(s.loaded)

	markers, err := s.deps.source.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.deps.logger.Warn("initial marker load failed, starting empty",
			"session", s.id,
			"error", err,
		)
		return
	}

	if s.store.Version() == 0 {
		s.store = s.store.Reset(markers)
	} else {
		// The user changed the list while loading; keep their markers after
		// the loaded ones.
		s.store = s.store.Prepend(markers)
		s.ctrl.ShiftSelection(len(markers))
		s.prepended += len(markers)
	}
	s.deps.logger.Debug("initial markers loaded", "session", s.id, "count", len(markers))
}

// createRemote creates m remotely and links the returned id to it. shift is
// the prepend count observed when m was placed at index.
func (s *Session) createRemote(ctx context.Context, index, shift int, m types.Marker) {
	if s.deps.syncer == nil {
		return
	}
	rec, err := s.deps.syncer.Create(context.WithoutCancel(ctx), stationclient.PayloadFromMarker(m))
	if err != nil {
		s.deps.logger.Warn("remote create failed", "session", s.id, "index", index, "error", err)
		return
	}
	if rec.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.locateLocked(index+s.prepended-shift, m)
	if !ok {
		s.deps.logger.Debug("placed marker changed before remote create returned",
			"session", s.id,
			"remote_id", rec.ID,
		)
		return
	}
	m.RemoteID = rec.ID
	s.store, _ = s.store.ReplaceAt(at, m)
}

// locateLocked finds m, preferring index i. Earlier deletions can move it
// below i.
func (s *Session) locateLocked(i int, m types.Marker) (int, bool) {
	if cur, ok := s.store.At(i); ok && cur == m {
		return i, true
	}
	for j := min(i, s.store.Len()-1); j >= 0; j-- {
		if cur, _ := s.store.At(j); cur == m {
			return j, true
		}
	}
	return 0, false
}

func (s *Session) updateRemote(ctx context.Context, m types.Marker) {
	if s.deps.syncer == nil || m.RemoteID == "" {
		return
	}
	_, err := s.deps.syncer.Update(context.WithoutCancel(ctx), m.RemoteID, stationclient.DetailsPatch(m.Details))
	if err != nil {
		s.deps.logger.Warn("remote update failed", "session", s.id, "remote_id", m.RemoteID, "error", err)
	}
}

func (s *Session) publish(ctx context.Context, action string, index int, m types.Marker, version uint64) {
	if s.deps.publisher == nil {
		return
	}
	ev := Event{
		Session: s.id,
		Action:  action,
		Index:   index,
		Marker:  m,
		Version: version,
		At:      s.deps.now().UTC(),
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.deps.publisher.Publish(pubCtx, ev); err != nil {
		s.deps.logger.Warn("publish marker event failed", "session", s.id, "action", action, "error", err)
	}
}

func (s *Session) touchLocked() {
	s.lastSeen = s.deps.now()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
