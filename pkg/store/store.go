package store

import (
	"fmt"
	"maps"
	"sync"

	"rental-backend/pkg/api"
	"rental-backend/pkg/storage"

	"go.uber.org/zap"
)

type State struct {
	Session SessionState
	Theme   ThemeState
}

// IsAuthenticated reports whether a user is signed in.
func IsAuthenticated(s State) bool {
	return s.Session.User != nil
}

// Tier is the current company's tier, absent without a company.
func Tier(s State) (string, bool) {
	if s.Session.Company == nil {
		return "", false
	}
	return s.Session.Company.Tier, true
}

// Store is safe for concurrent use. Listeners run after the lock is released.
type Store struct {
	mu        sync.Mutex
	state     State
	storage   storage.Storage
	log       *zap.Logger
	listeners map[int]func(State)
	nextID    int
}

// New reads the persisted theme, defaulting to light.
func New(st storage.Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	theme, ok := st.Get(storage.ThemeKey)
	if !ok || theme == "" {
		theme = ThemeLight
	}
	return &Store{
		state: State{
			Theme: ThemeState{Theme: theme, Settings: map[string]any{}},
		},
		storage:   st,
		log:       log,
		listeners: make(map[int]func(State)),
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() State {
	out := s.state
	out.Session.User = cloneUser(out.Session.User)
	out.Session.Company = cloneCompany(out.Session.Company)
	out.Theme.Settings = maps.Clone(out.Theme.Settings)
	return out
}

// Dispatch runs a through every slice. Theme changes are written to storage before the new
// state is committed; a failed write leaves the state as it was.
func (s *Store) Dispatch(a Action) error {
	s.mu.Lock()

	next := State{
		Session: ReduceSession(s.state.Session, a),
		Theme:   ReduceTheme(s.state.Theme, a),
	}

	switch a.(type) {
	case SetTheme, ToggleTheme:
		if err := s.storage.Set(storage.ThemeKey, next.Theme.Theme); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("persist theme: %w", err)
		}
	}

	s.state = next
	snap := s.snapshot()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return nil
}

// Subscribe registers fn for every committed dispatch and returns its cancel function.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) SetUser(u *api.User) {
	s.mustDispatch(SetUser{User: u})
}

func (s *Store) SetCompany(c *api.Company) {
	s.mustDispatch(SetCompany{Company: c})
}

func (s *Store) UpdateUser(p api.UserPatch) {
	s.mustDispatch(UpdateUser{Patch: p})
}

func (s *Store) ClearUser() {
	s.mustDispatch(ClearUser{})
}

func (s *Store) UpdateSettings(settings map[string]any) {
	s.mustDispatch(UpdateSettings{Settings: settings})
}

func (s *Store) SetTheme(theme string) error {
	return s.Dispatch(SetTheme{Theme: theme})
}

func (s *Store) ToggleTheme() error {
	return s.Dispatch(ToggleTheme{})
}

// mustDispatch is for actions that touch no storage and so cannot fail.
func (s *Store) mustDispatch(a Action) {
	if err := s.Dispatch(a); err != nil {
		s.log.Error("dispatch failed", zap.String("action", fmt.Sprintf("%T", a)), zap.Error(err))
	}
}
