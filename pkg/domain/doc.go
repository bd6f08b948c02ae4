/*
Package domain contains the serialized model of a Statescript graph.

Graphs are authored by an editor and persisted as JSON or YAML. The builder
in pkg/compiler reads them and never mutates them. This package is kept free
of I/O so that loaders, validators and the builder share one model.

# Key Entities

  - Graph: ordered Nodes, Connections and Variables plus a cosmetic name.
  - Node: id, category, runtime type id, construction data and property bindings.
  - Connection: (node, output port) to (node, input port).
  - Variable: a named, typed, graph scoped slot with initial value(s).
  - NodeProperty: one resolver bound to (direction, index) on a node.
*/
package domain
