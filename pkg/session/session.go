// Package session ties the HTTP client, the query hooks and the store together: signing in
// and out, restoring a persisted session, and the navigator that tears the session down when
// the client is sent to the login screen.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"rental-backend/pkg/api"
	"rental-backend/pkg/client"
	"rental-backend/pkg/query"
	"rental-backend/pkg/storage"
	"rental-backend/pkg/store"

	"go.uber.org/zap"
)

// Router records the current location. Arriving at the login path clears the session.
type Router struct {
	store *store.Store

	mu       sync.Mutex
	current  string
	listener func(path string)
}

func NewRouter(s *store.Store) *Router {
	return &Router{store: s, current: "/"}
}

// OnNavigate sets a callback run after every navigation.
func (r *Router) OnNavigate(fn func(path string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listener = fn
}

func (r *Router) Navigate(path string) {
	r.mu.Lock()
	r.current = path
	fn := r.listener
	r.mu.Unlock()

	if path == client.LoginPath {
		r.store.ClearUser()
	}
	if fn != nil {
		fn(path)
	}
}

func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Manager persists the session credentials and mirrors them into the store.
type Manager struct {
	storage storage.Storage
	store   *store.Store
	log     *zap.Logger
}

func NewManager(st storage.Storage, s *store.Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{storage: st, store: s, log: log}
}

// SignIn stores a token issued elsewhere together with the user it belongs to.
func (m *Manager) SignIn(token string, user api.User, company *api.Company) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.storage.Set(storage.TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := m.storage.Set(storage.UserKey, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	if company == nil {
		if err := m.storage.Remove(storage.CompanyKey); err != nil {
			return fmt.Errorf("remove company: %w", err)
		}
	} else {
		rawCompany, err := json.Marshal(company)
		if err != nil {
			return fmt.Errorf("encode company: %w", err)
		}
		if err := m.storage.Set(storage.CompanyKey, string(rawCompany)); err != nil {
			return fmt.Errorf("persist company: %w", err)
		}
	}

	m.store.SetUser(&user)
	m.store.SetCompany(company)
	return nil
}

func (m *Manager) SignOut() error {
	for _, key := range []string{storage.TokenKey, storage.UserKey, storage.CompanyKey} {
		if err := m.storage.Remove(key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	m.store.ClearUser()
	return nil
}

// Restore loads the persisted user and company into the store. It reports false when there
// is no usable session, i.e. no token or no decodable user. An unreadable company is dropped
// and the user is restored without one.
func (m *Manager) Restore() bool {
	token, ok := m.storage.Get(storage.TokenKey)
	if !ok || token == "" {
		return false
	}
	raw, ok := m.storage.Get(storage.UserKey)
	if !ok {
		return false
	}

	var user api.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.log.Warn("discarding unreadable stored user", zap.Error(err))
		_ = m.storage.Remove(storage.UserKey)
		return false
	}
	m.store.SetUser(&user)

	if rawCompany, ok := m.storage.Get(storage.CompanyKey); ok {
		var company api.Company
		if err := json.Unmarshal([]byte(rawCompany), &company); err != nil {
			m.log.Warn("discarding unreadable stored company", zap.Error(err))
			_ = m.storage.Remove(storage.CompanyKey)
		} else {
			m.store.SetCompany(&company)
		}
	}
	return true
}

// App is a fully wired client side.
type App struct {
	Storage storage.Storage
	Store   *store.Store
	Router  *Router
	Client  *client.Client
	Hooks   *query.Hooks
	Session *Manager
}

type Options struct {
	BaseURL string
	Storage storage.Storage
	Logger  *zap.Logger
}

func NewApp(opts Options) *App {
	if opts.Storage == nil {
		opts.Storage = storage.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	st := store.New(opts.Storage, opts.Logger)
	router := NewRouter(st)
	c := client.New(client.Config{
		BaseURL:   opts.BaseURL,
		Storage:   opts.Storage,
		Navigator: router,
		Logger:    opts.Logger,
	})

	return &App{
		Storage: opts.Storage,
		Store:   st,
		Router:  router,
		Client:  c,
		Hooks:   query.New(c, query.NewCache(opts.Logger), opts.Logger),
		Session: NewManager(opts.Storage, st, opts.Logger),
	}
}
