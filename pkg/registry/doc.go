// Package registry maps runtime type ids to node constructors and derives the
// node catalog shown in creation menus.
//
// Implementations register a Definition per type. The catalog is discovered
// lazily by building one throwaway instance per type from its narrowest
// constructor and placeholder arguments; types that cannot be built that way
// fall back to their category's default port layout.
package registry
