/*
Package ports defines the driven ports (interfaces) consumed by the Statescript core.

These interfaces decouple the builder and the resolver system from the domain
library and the storage layer.

# Key Interfaces

  - Entity: the owner of a running graph; answers tag membership and attribute reads.
  - GraphLoader: retrieves serialized graphs by name (file, memory, Loam, Redis).
  - GraphStore: a GraphLoader that can also persist graphs.
*/
package ports
