// Package board owns the authoritative idea collection and selection.
//
// Every state change goes through a Service method; each one re-establishes
// the board invariants before it returns:
//   - ids are unique and no idea connects to itself
//   - every node lies inside the board (see spatial.Clamp)
//   - the selection only holds ids of existing ideas
//
// Observers registered with Subscribe are notified synchronously after each
// effective change, outside the lock, so they may read the board.
package board

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/museboard/museboard/internal/core/spatial"
	"github.com/museboard/museboard/internal/domain"
)

// EventKind describes what changed
type EventKind int

const (
	EventAdded EventKind = iota
	EventUpdated
	EventRemoved
	EventReplaced
	EventConnected
	EventSelection
	EventHealed
	EventResized
)

func (k EventKind) String() string {
	return [...]string{"added", "updated", "removed", "replaced", "connected", "selection", "healed", "resized"}[k]
}

// Event is delivered to observers after a mutation
type Event struct {
	Kind EventKind
	IDs  []string // Ideas touched by the change, when meaningful
}

// Observer receives change notifications
type Observer func(Event)

// Snapshot is a read-only copy of the board for rendering
type Snapshot struct {
	Geometry spatial.Geometry
	Ideas    []domain.Idea
	Selected []string // Selected ids in board order
}

// IsSelected returns true if id is part of the snapshot's selection
func (s Snapshot) IsSelected(id string) bool {
	return slices.Contains(s.Selected, id)
}

// Option configures a Service
type Option func(*Service)

// WithIDGenerator replaces the default UUID generator
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// Service is the board model
type Service struct {
	mu        sync.RWMutex
	geometry  spatial.Geometry
	ideas     []domain.Idea
	selected  map[string]bool
	observers map[int]Observer
	nextObsID int
	newID     func() string
	logger    *slog.Logger
}

// NewService creates an empty board with the given geometry
func NewService(geometry spatial.Geometry, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		geometry:  geometry,
		ideas:     []domain.Idea{},
		selected:  make(map[string]bool),
		observers: make(map[int]Observer),
		newID:     uuid.NewString,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an observer and returns a function that removes it
func (s *Service) Subscribe(obs Observer) func() {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = obs
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// notify must be called without holding the lock
func (s *Service) notify(ev Event) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	observers := make([]Observer, 0, len(ids))
	for _, id := range ids {
		observers = append(observers, s.observers[id])
	}
	s.mu.RUnlock()

	for _, obs := range observers {
		obs(ev)
	}
}

// indexOf returns the slice index of id, or -1. Caller holds the lock.
func (s *Service) indexOf(id string) int {
	return slices.IndexFunc(s.ideas, func(i domain.Idea) bool { return i.ID == id })
}

// Geometry returns the current board geometry
func (s *Service) Geometry() spatial.Geometry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.geometry
}

// Resize changes the board dimensions and re-clamps every node
func (s *Service) Resize(g spatial.Geometry) {
	s.mu.Lock()
	if s.geometry == g {
		s.mu.Unlock()
		return
	}
	s.geometry = g
	moved := s.healLocked()
	s.mu.Unlock()

	s.logger.Debug("board resized", "width", g.BoardWidth, "height", g.BoardHeight, "moved", len(moved))
	s.notify(Event{Kind: EventResized, IDs: moved})
}

// AddIdea inserts a new idea at the clamped position (x, y)
func (s *Service) AddIdea(text string, x, y float64) domain.Idea {
	s.mu.Lock()
	cx, cy := s.geometry.Clamp(x, y)
	idea := domain.Idea{
		ID:          s.uniqueIDLocked(),
		Text:        text,
		X:           cx,
		Y:           cy,
		Connections: []string{},
	}
	s.ideas = append(s.ideas, idea)
	s.mu.Unlock()

	s.logger.Debug("idea added", "id", idea.ID, "x", cx, "y", cy)
	s.notify(Event{Kind: EventAdded, IDs: []string{idea.ID}})
	return idea.Clone()
}

func (s *Service) uniqueIDLocked() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}

// UpdateIdea applies patch to the idea with the given id. A patched position
// is re-clamped. Returns false (and changes nothing) if id does not exist.
func (s *Service) UpdateIdea(id string, patch domain.IdeaPatch) bool {
	if patch.IsEmpty() {
		return s.Has(id)
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		s.logger.Debug("update skipped", "id", id, "error", domain.ErrNotFound)
		return false
	}

	idea := &s.ideas[idx]
	if patch.Text != nil {
		idea.Text = *patch.Text
	}
	if patch.Moves() {
		x, y := idea.X, idea.Y
		if patch.X != nil {
			x = *patch.X
		}
		if patch.Y != nil {
			y = *patch.Y
		}
		idea.X, idea.Y = s.geometry.Clamp(x, y)
	}
	s.mu.Unlock()

	s.notify(Event{Kind: EventUpdated, IDs: []string{id}})
	return true
}

// RemoveIdea deletes the idea and strips every reference to it from other
// ideas' connections and from the selection in one step.
func (s *Service) RemoveIdea(id string) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	s.ideas = slices.Delete(s.ideas, idx, idx+1)
	for i := range s.ideas {
		s.ideas[i].Connections = slices.DeleteFunc(s.ideas[i].Connections, func(target string) bool {
			return target == id
		})
	}
	delete(s.selected, id)
	s.mu.Unlock()

	s.logger.Debug("idea removed", "id", id)
	s.notify(Event{Kind: EventRemoved, IDs: []string{id}})
	return true
}

// ReplaceAll swaps the whole collection and empties the selection.
//
// Incoming ideas are normalized: missing or duplicate ids get fresh ones,
// self-loops and repeated connection targets are dropped, and positions are
// clamped.
func (s *Service) ReplaceAll(ideas []domain.Idea) {
	s.mu.Lock()
	s.ideas = make([]domain.Idea, 0, len(ideas))
	s.selected = make(map[string]bool)

	ids := make([]string, 0, len(ideas))
	for _, in := range ideas {
		idea := in.Clone()
		if idea.ID == "" || s.indexOf(idea.ID) >= 0 {
			idea.ID = s.uniqueIDLocked()
		}
		idea.Connections = normalizeConnections(idea.ID, idea.Connections)
		idea.X, idea.Y = s.geometry.Clamp(idea.X, idea.Y)
		s.ideas = append(s.ideas, idea)
		ids = append(ids, idea.ID)
	}
	s.mu.Unlock()

	s.logger.Debug("board replaced", "count", len(ids))
	s.notify(Event{Kind: EventReplaced, IDs: ids})
}

func normalizeConnections(self string, targets []string) []string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		if t == self || t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Clear removes every idea and the selection
func (s *Service) Clear() {
	s.ReplaceAll(nil)
}

// Connect adds a connection from → to. Both ideas must exist and differ;
// an already present connection is left alone. Reverse duplicates are allowed.
func (s *Service) Connect(from, to string) bool {
	if from == to {
		return false
	}

	s.mu.Lock()
	fi := s.indexOf(from)
	if fi < 0 || s.indexOf(to) < 0 {
		s.mu.Unlock()
		return false
	}
	if s.ideas[fi].ConnectedTo(to) {
		s.mu.Unlock()
		return true
	}
	s.ideas[fi].Connections = append(s.ideas[fi].Connections, to)
	s.mu.Unlock()

	s.logger.Debug("ideas connected", "from", from, "to", to)
	s.notify(Event{Kind: EventConnected, IDs: []string{from, to}})
	return true
}

// ToggleSelection adds or removes id from the selection. Unknown ids are ignored.
func (s *Service) ToggleSelection(id string) bool {
	s.mu.Lock()
	if s.indexOf(id) < 0 {
		s.mu.Unlock()
		return false
	}
	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}
	s.mu.Unlock()

	s.notify(Event{Kind: EventSelection, IDs: []string{id}})
	return true
}

// ClearSelection empties the selection
func (s *Service) ClearSelection() {
	s.mu.Lock()
	if len(s.selected) == 0 {
		s.mu.Unlock()
		return
	}
	s.selected = make(map[string]bool)
	s.mu.Unlock()

	s.notify(Event{Kind: EventSelection})
}

// Heal re-clamps any node found outside the board and returns how many moved.
// It only writes and notifies when something actually changed.
func (s *Service) Heal() int {
	s.mu.Lock()
	moved := s.healLocked()
	s.mu.Unlock()

	if len(moved) == 0 {
		return 0
	}
	s.logger.Debug("board healed", "moved", len(moved))
	s.notify(Event{Kind: EventHealed, IDs: moved})
	return len(moved)
}

func (s *Service) healLocked() []string {
	var moved []string
	for i := range s.ideas {
		idea := &s.ideas[i]
		x, y := s.geometry.Clamp(idea.X, idea.Y)
		if x != idea.X || y != idea.Y {
			idea.X, idea.Y = x, y
			moved = append(moved, idea.ID)
		}
	}
	return moved
}

// Has returns true if an idea with id exists
func (s *Service) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// Idea returns a copy of the idea with id
func (s *Service) Idea(id string) (domain.Idea, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Idea{}, false
	}
	return s.ideas[idx].Clone(), true
}

// Ideas returns a copy of all ideas in board order
func (s *Service) Ideas() []domain.Idea {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneIdeasLocked()
}

func (s *Service) cloneIdeasLocked() []domain.Idea {
	out := make([]domain.Idea, len(s.ideas))
	for i, idea := range s.ideas {
		out[i] = idea.Clone()
	}
	return out
}

// Count returns the number of ideas
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ideas)
}

// IsSelected returns true if id is selected
func (s *Service) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

// SelectionCount returns the number of selected ideas
func (s *Service) SelectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

// SelectedIDs returns the selected ids in board order
func (s *Service) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedLocked()
}

func (s *Service) selectedLocked() []string {
	out := make([]string, 0, len(s.selected))
	for _, idea := range s.ideas {
		if s.selected[idea.ID] {
			out = append(out, idea.ID)
		}
	}
	return out
}

// Snapshot returns a consistent read-only copy of the board
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Geometry: s.geometry,
		Ideas:    s.cloneIdeasLocked(),
		Selected: s.selectedLocked(),
	}
}
