package store

import (
	"context"
	"slices"

	"github.com/moyoez/upconfig/types"
)

// BuildViews joins identities with their templates. Identities without a
// settings block get an empty template list.
func BuildViews(root *types.ConfigRoot, identities []types.Identity, expanded map[uint64]bool) []types.UserWithTemplates {
	views := make([]types.UserWithTemplates, 0, len(identities))
	for _, id := range identities {
		templates := []types.NamedTemplate{}
		if uc := root.User(id.UID); uc != nil {
			templates = uc.Templates.Entries()
		}
		views = append(views, types.UserWithTemplates{
			User:      id,
			Templates: templates,
			Expanded:  expanded[id.UID],
		})
	}
	return views
}

// CountTemplates sums the templates of all views.
func CountTemplates(views []types.UserWithTemplates) int {
	total := 0
	for _, v := range views {
		total += len(v.Templates)
	}
	return total
}

// SetIdentities replaces the identities views are scoped to.
func (s *Store) SetIdentities(identities []types.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities = slices.Clone(identities)
	s.hasIDs = true
}

// Identities returns the identities views are currently scoped to.
func (s *Store) Identities() []types.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identitiesLocked()
}

func (s *Store) identitiesLocked() []types.Identity {
	if !s.hasIDs && s.source != nil {
		return s.source.Identities()
	}
	return slices.Clone(s.identities)
}

// UserTemplates is the user to template join for the current identities.
// It is empty before the first load.
func (s *Store) UserTemplates() []types.UserWithTemplates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cache == nil {
		return []types.UserWithTemplates{}
	}
	return BuildViews(s.cache, s.identitiesLocked(), s.expanded)
}

func (s *Store) TotalTemplateCount() int {
	return CountTemplates(s.UserTemplates())
}

// AllUsers lists the identities that appear in the views.
func (s *Store) AllUsers() []types.Identity {
	views := s.UserTemplates()
	users := make([]types.Identity, 0, len(views))
	for _, v := range views {
		users = append(users, v.User)
	}
	return users
}

// ToggleExpanded flips the UI expansion flag of uid and returns the new value.
// The uid does not need to exist in the cache.
func (s *Store) ToggleExpanded(uid uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded[uid] = !s.expanded[uid]
	return s.expanded[uid]
}

func (s *Store) Expanded(uid uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expanded[uid]
}

// Templates lists the templates of uid in display order.
func (s *Store) Templates(uid uint64) []types.NamedTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uc := s.cache.User(uid)
	if uc == nil {
		return []types.NamedTemplate{}
	}
	return uc.Templates.Entries()
}

// Template returns a copy of one template.
func (s *Store) Template(uid uint64, name string) (types.TemplateConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uc := s.cache.User(uid)
	if uc == nil {
		return types.TemplateConfig{}, false
	}
	return uc.Templates.Get(name)
}

// BuildUserTemplates loads the cache when needed, scopes the views to
// identities and returns them.
func (s *Store) BuildUserTemplates(ctx context.Context, identities []types.Identity) ([]types.UserWithTemplates, error) {
	if !s.Loaded() {
		if err := s.Load(ctx); err != nil {
			return nil, err
		}
	}
	s.SetIdentities(identities)
	return s.UserTemplates(), nil
}
