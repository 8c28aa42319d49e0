package store

import (
	"sort"
)

// MemoryStore is a generic in-memory table keyed by K.
// The key is obtained from the supplied keySelector function and values are
// copied on the way in and out with cloneFn, so callers never share pointers
// with the table.
//
// MemoryStore is not synchronised; the owning store serialises access and
// uses Clone to give every transaction its own working copy.
type MemoryStore[K comparable, T any] struct {
	records     map[K]*T
	order       []K
	keySelector func(*T) K
	cloneFn     func(*T) *T
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore[K comparable, T any](keySelector func(*T) K, cloneFn func(*T) *T) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
		cloneFn:     cloneFn,
	}
}

// Has reports whether key is stored.
func (s *MemoryStore[K, T]) Has(key K) bool {
	_, ok := s.records[key]
	return ok
}

// Save stores or overwrites a record, keeping the original insertion order.
func (s *MemoryStore[K, T]) Save(v *T) {
	if v == nil {
		return
	}
	key := s.keySelector(v)
	if _, ok := s.records[key]; !ok {
		s.order = append(s.order, key)
	}
	s.records[key] = s.cloneFn(v)
}

// Load returns a copy of the record, or nil when absent.
func (s *MemoryStore[K, T]) Load(key K) *T {
	v, ok := s.records[key]
	if !ok {
		return nil
	}
	return s.cloneFn(v)
}

// List returns copies of records accepted by filter in insertion order.
func (s *MemoryStore[K, T]) List(filter func(*T) bool) []*T {
	out := make([]*T, 0)
	for _, key := range s.order {
		v := s.records[key]
		if filter != nil && !filter(v) {
			continue
		}
		out = append(out, s.cloneFn(v))
	}
	return out
}

// Count returns the number of records accepted by filter.
func (s *MemoryStore[K, T]) Count(filter func(*T) bool) int {
	count := 0
	for _, v := range s.records {
		if filter == nil || filter(v) {
			count++
		}
	}
	return count
}

// Update applies fn to stored records accepted by filter in place and
// returns the number of records changed.
func (s *MemoryStore[K, T]) Update(filter func(*T) bool, fn func(*T)) int {
	count := 0
	for _, key := range s.order {
		v := s.records[key]
		if filter(v) {
			fn(v)
			count++
		}
	}
	return count
}

// Clone returns an independent copy of the table.
func (s *MemoryStore[K, T]) Clone() *MemoryStore[K, T] {
	ret := &MemoryStore[K, T]{
		records:     make(map[K]*T, len(s.records)),
		order:       append([]K(nil), s.order...),
		keySelector: s.keySelector,
		cloneFn:     s.cloneFn,
	}
	for k, v := range s.records {
		ret.records[k] = s.cloneFn(v)
	}
	return ret
}

// SortBy sorts items in place with less.
func SortBy[T any](items []*T, less func(a, b *T) bool) []*T {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	return items
}
