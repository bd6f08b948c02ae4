package testutils

import "sync"

// Entity is an in-memory ports.Entity for tests. Attribute lookups are
// counted so tests can assert that nothing is cached between evaluations.
type Entity struct {
	mu         sync.Mutex
	tags       map[string]bool
	attributes map[string]map[string]float64
	reads      int
}

// NewEntity creates an entity carrying tags.
func NewEntity(tags ...string) *Entity {
	e := &Entity{
		tags:       make(map[string]bool, len(tags)),
		attributes: make(map[string]map[string]float64),
	}
	for _, t := range tags {
		e.tags[t] = true
	}
	return e
}

// Set assigns an attribute and returns e for chaining.
func (e *Entity) Set(set, name string, value float64) *Entity {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attributes[set] == nil {
		e.attributes[set] = make(map[string]float64)
	}
	e.attributes[set][name] = value
	return e
}

// HasTag implements ports.Entity.
func (e *Entity) HasTag(tag string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tags[tag]
}

// Attribute implements ports.Entity.
func (e *Entity) Attribute(set, name string) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reads++
	v, ok := e.attributes[set][name]
	return v, ok
}

// Reads returns how many attribute lookups were made.
func (e *Entity) Reads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reads
}
