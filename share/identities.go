package share

import (
	"slices"
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/moyoez/upconfig/tool"
	"github.com/moyoez/upconfig/types"
)

const (
	DefaultIdentityTTL = 30 * time.Minute
)

type identityEntry struct {
	Identity types.Identity
	Seq      uint64 // first login order, starts at 1
}

// Registry keeps the identities currently logged in. Entries expire after
// the TTL unless refreshed by another Register.
type Registry struct {
	mu    sync.Mutex
	seq   uint64
	cache *ttlworker.Cache[uint64, identityEntry]
}

// NewRegistry creates a registry whose entries live for ttl (DefaultIdentityTTL when ttl <= 0).
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultIdentityTTL
	}
	return &Registry{
		cache: ttlworker.NewCache[uint64, identityEntry](ttl),
	}
}

// Register adds or refreshes an identity. A refreshed identity keeps its position.
func (r *Registry) Register(id types.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.cache.Get(id.UID)
	if existing.Seq == 0 {
		r.seq++
		existing.Seq = r.seq
		tool.DefaultLogger.Infof("Identity logged in: %s (%d)", id.Username, id.UID)
	} else {
		tool.DefaultLogger.Debugf("Identity refreshed: %s (%d)", id.Username, id.UID)
	}
	existing.Identity = id
	r.cache.Set(id.UID, existing)
}

// Remove drops uid, e.g. on logout.
func (r *Registry) Remove(uid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(uid)
}

func (r *Registry) Get(uid uint64) (types.Identity, bool) {
	entry := r.cache.Get(uid)
	return entry.Identity, entry.Seq != 0
}

// Identities lists the live identities in login order.
func (r *Registry) Identities() []types.Identity {
	entries := make([]identityEntry, 0)
	err := r.cache.Range(func(_ uint64, v identityEntry) error {
		if v.Seq != 0 {
			entries = append(entries, v)
		}
		return nil
	})
	if err != nil {
		tool.DefaultLogger.Warnf("Failed to list identities: %v", err)
		return nil
	}
	slices.SortFunc(entries, func(a, b identityEntry) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	out := make([]types.Identity, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Identity)
	}
	return out
}
