package gateway

import (
	"sort"
	"sync"
)

// Registry is the user -> active connection mapping. At most one connection
// per user: a newer connection supersedes the older one (last write wins).
// Owned exclusively by the Gateway; external collaborators go through
// Gateway.Deliver / Gateway.LookupConnection.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[string]*Client)}
}

// bind upserts the user's entry and returns the superseded client, if any,
// so the caller can close it outside the lock.
func (r *Registry) bind(c *Client) (prev *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old := r.byUser[c.Identity.ID]; old != nil && old.ConnID != c.ConnID {
		prev = old
	}
	r.byUser[c.Identity.ID] = c
	return prev
}

// unbind removes the user's entry only if connID is still the one on record;
// a stale disconnect from a superseded connection must not evict its
// replacement.
func (r *Registry) unbind(userID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byUser[userID]
	if !ok || cur.ConnID != connID {
		return false
	}
	delete(r.byUser, userID)
	return true
}

func (r *Registry) lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[userID]
	return c, ok
}

// snapshot returns the online user ids (sorted, for stable payloads) and the
// clients to fan out to, taken under a single lock so a broadcast always
// reflects one consistent registry state.
func (r *Registry) snapshot() ([]string, []*Client) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.byUser))
	clients := make([]*Client, 0, len(r.byUser))
	for id, c := range r.byUser {
		ids = append(ids, id)
		clients = append(clients, c)
	}
	sort.Strings(ids)
	return ids, clients
}

func (r *Registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
