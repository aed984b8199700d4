// Package store keeps the client side mirror of the backend configuration.
//
// A Store holds the live tree (the cache), the last backend confirmed copy
// (the baseline) and UI-only expansion flags. Every mutation is confirmed by
// the gateway before it reaches the cache and is then committed with Persist.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/moyoez/upconfig/tool"
	"github.com/moyoez/upconfig/transfer"
	"github.com/moyoez/upconfig/types"
)

// IdentitySource supplies the logged in identities, in display order.
type IdentitySource interface {
	Identities() []types.Identity
}

// Listener is called after each change to the cache, outside of any lock.
type Listener func(types.Notification)

type Option func(*Store)

// WithListener registers fn for change notifications.
func WithListener(fn Listener) Option {
	return func(s *Store) {
		if fn != nil {
			s.listeners = append(s.listeners, fn)
		}
	}
}

// WithIdentitySource scopes views to the identities of src until SetIdentities is called.
func WithIdentitySource(src IdentitySource) Option {
	return func(s *Store) {
		s.source = src
	}
}

type Store struct {
	gw transfer.Gateway

	// op serializes Load, Persist and the mutations; mu guards the fields below
	// and is never held across a gateway call.
	op sync.Mutex
	mu sync.RWMutex

	cache      *types.ConfigRoot
	baseline   *types.ConfigRoot
	expanded   map[uint64]bool
	identities []types.Identity
	hasIDs     bool
	source     IdentitySource
	lastErr    string
	loading    bool

	listeners []Listener
}

func New(gw transfer.Gateway, opts ...Option) *Store {
	s := &Store{
		gw:       gw,
		expanded: make(map[uint64]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the whole tree and makes it both the cache and the baseline.
// On failure the previous cache and baseline are kept.
func (s *Store) Load(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()
	return s.load(ctx)
}

// Persist asks the backend to commit its state, then reloads so the baseline
// reflects what the backend actually stored.
func (s *Store) Persist(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()
	return s.persist(ctx)
}

func (s *Store) load(ctx context.Context) error {
	s.setLoading(true)
	root, err := s.gw.LoadConfig(ctx)
	s.setLoading(false)
	if err == nil && root == nil {
		err = errors.New("gateway returned no configuration")
	}
	if err != nil {
		lerr := &LoadError{Err: err}
		s.setLastError(lerr)
		tool.DefaultLogger.Errorf("Failed to load config: %v", err)
		return lerr
	}
	root.Normalize()

	s.mu.Lock()
	s.cache = root
	s.baseline = root.Clone()
	s.lastErr = ""
	users := len(root.Config)
	s.mu.Unlock()

	tool.DefaultLogger.Debugf("Config loaded: %d users", users)
	s.emit(types.NotifyTypeConfigLoaded, map[string]any{"users": users})
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	s.setLoading(true)
	err := s.gw.SaveConfig(ctx)
	s.setLoading(false)
	if err == nil {
		err = s.load(ctx)
	}
	if err != nil {
		perr := &PersistError{Err: err}
		s.setLastError(perr)
		tool.DefaultLogger.Errorf("Failed to save config: %v", err)
		s.emit(types.NotifyTypePersistFailed, map[string]any{"error": err.Error()})
		return perr
	}
	s.emit(types.NotifyTypeConfigSaved, nil)
	return nil
}

// Loaded reports whether a load has succeeded at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache != nil
}

// Snapshot returns a copy of the cache, or nil before the first load.
func (s *Store) Snapshot() *types.ConfigRoot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Clone()
}

// Baseline returns a copy of the last backend confirmed tree.
func (s *Store) Baseline() *types.ConfigRoot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseline.Clone()
}

// Diverged reports whether the cache holds changes the backend has not confirmed.
func (s *Store) Diverged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.cache.Equal(s.baseline)
}

// LastError is the message of the last failed load or persist; empty after a success.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Loading reports whether a load or save round trip is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) setLastError(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()
}

func (s *Store) emit(eventType string, data map[string]any) {
	if len(s.listeners) == 0 {
		return
	}
	n := types.Notification{
		ID:   tool.GenerateRandomUUID(),
		Type: eventType,
		Data: data,
	}
	for _, fn := range s.listeners {
		fn(n)
	}
}
