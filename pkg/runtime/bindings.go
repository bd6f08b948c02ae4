package runtime

import (
	"sort"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/resolver"
)

// Bindings is the sparse map of resolvers bound to a node's property slots.
// A slot holds at most one resolver; binding again replaces it.
type Bindings struct {
	m map[domain.PropertyKey]resolver.Resolver
}

// Bind sets the resolver for (dir, index) and reports whether a previous
// binding was replaced. Binding nil clears the slot.
func (b *Bindings) Bind(dir domain.Direction, index int, r resolver.Resolver) bool {
	key := domain.PropertyKey{Direction: dir, Index: index}
	_, replaced := b.m[key]
	if r == nil {
		delete(b.m, key)
		return replaced
	}
	if b.m == nil {
		b.m = make(map[domain.PropertyKey]resolver.Resolver)
	}
	b.m[key] = r
	return replaced
}

// Get returns the resolver bound to (dir, index).
func (b *Bindings) Get(dir domain.Direction, index int) (resolver.Resolver, bool) {
	r, ok := b.m[domain.PropertyKey{Direction: dir, Index: index}]
	return r, ok
}

// Len returns the number of bound slots.
func (b *Bindings) Len() int { return len(b.m) }

// Keys returns the bound slots, inputs first, each in index order.
func (b *Bindings) Keys() []domain.PropertyKey {
	keys := make([]domain.PropertyKey, 0, len(b.m))
	for k := range b.m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Direction != keys[j].Direction {
			return keys[i].Direction == domain.Input
		}
		return keys[i].Index < keys[j].Index
	})
	return keys
}
