// Package compiler parses serialized graphs and builds them into runtime
// graphs.
//
// The Parser reads JSON or YAML into a domain.Graph. The Builder resolves
// each node's runtime type through a registry.Registry, constructs it with
// the node's data, attaches property bindings and wires connections. Problems
// that leave the rest of the graph usable are collected as Warnings; problems
// that make a node impossible to build abort with a *NodeError.
package compiler
