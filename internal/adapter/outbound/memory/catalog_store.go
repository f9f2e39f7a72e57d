package memory

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/policy"
)

// CatalogStore implements policy.CatalogStore with in-memory maps. The
// (resource, action) index is keyed by an xxhash digest of the resource
// bytes plus the action byte, the same "hash the lookup key down to a
// uint64" idiom the teacher's CEL result cache uses for its compiled-rule
// cache keys. Thread-safe for concurrent access.
type CatalogStore struct {
	mu      sync.RWMutex
	rules   map[policy.ID]policy.Rule
	index   map[uint64][]policy.ID
	nextID  policy.ID
}

// NewCatalogStore creates an empty in-memory catalog store. Ids start at 1.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		rules:  make(map[policy.ID]policy.Rule),
		index:  make(map[uint64][]policy.ID),
		nextID: 1,
	}
}

// AllocateID returns the next strictly-increasing id.
func (s *CatalogStore) AllocateID(_ context.Context) (policy.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id, nil
}

// PutRule inserts or overwrites a rule by id, deep-copying its condition
// slice so callers cannot mutate stored state through an aliased slice.
func (s *CatalogStore) PutRule(_ context.Context, rule policy.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[rule.ID] = copyRule(rule)
	return nil
}

// GetRule returns a rule by id.
func (s *CatalogStore) GetRule(_ context.Context, id policy.ID) (policy.Rule, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[id]
	if !ok {
		return policy.Rule{}, false, nil
	}
	return copyRule(r), true, nil
}

// AllRules returns every retained rule ordered by id.
func (s *CatalogStore) AllRules(_ context.Context) ([]policy.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]policy.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, copyRule(r))
	}
	sortRulesByID(out)
	return out, nil
}

// AppendIndex adds id under the (resource, action) index key.
func (s *CatalogStore) AppendIndex(_ context.Context, resource attribute.Identifier, action policy.Action, id policy.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := indexKey(resource, action)
	s.index[key] = append(s.index[key], id)
	return nil
}

// RemoveFromIndex removes id from the (resource, action) index via
// swap-with-last-and-shrink. A missing id is a no-op success.
func (s *CatalogStore) RemoveFromIndex(_ context.Context, resource attribute.Identifier, action policy.Action, id policy.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := indexKey(resource, action)
	ids := s.index[key]
	for i, existing := range ids {
		if existing == id {
			last := len(ids) - 1
			ids[i] = ids[last]
			s.index[key] = ids[:last]
			return nil
		}
	}
	return nil
}

// Index returns a copy of the ids indexed under (resource, action).
func (s *CatalogStore) Index(_ context.Context, resource attribute.Identifier, action policy.Action) ([]policy.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.index[indexKey(resource, action)]
	out := make([]policy.ID, len(src))
	copy(out, src)
	return out, nil
}

// indexKey hashes a (resource, action) pair to a uint64 map key.
func indexKey(resource attribute.Identifier, action policy.Action) uint64 {
	var buf [attribute.IdentifierSize + 1]byte
	copy(buf[:attribute.IdentifierSize], resource[:])
	buf[attribute.IdentifierSize] = byte(action)
	return xxhash.Sum64(buf[:])
}

func copyRule(r policy.Rule) policy.Rule {
	out := r
	out.Conditions = make([]policy.Condition, len(r.Conditions))
	copy(out.Conditions, r.Conditions)
	return out
}

func sortRulesByID(rules []policy.Rule) {
	for i := 1; i < len(rules); i++ {
		for j := i; j > 0 && rules[j-1].ID > rules[j].ID; j-- {
			rules[j-1], rules[j] = rules[j], rules[j-1]
		}
	}
}

// Compile-time interface verification.
var _ policy.CatalogStore = (*CatalogStore)(nil)
