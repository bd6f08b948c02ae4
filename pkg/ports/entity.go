package ports

// Entity is the owner a runtime graph executes on behalf of.
// It is implemented by the domain library and read live by resolvers.
type Entity interface {
	// HasTag reports whether the entity currently carries tag.
	HasTag(tag string) bool

	// Attribute reads the current value of an attribute inside an attribute set.
	// ok is false when either the set or the attribute does not exist.
	Attribute(set, name string) (value float64, ok bool)
}
