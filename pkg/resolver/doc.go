// Package resolver implements the small expression language bound to node
// properties: constants, variable and attribute reads, tag checks and
// comparisons.
//
// Resolvers form a closed set. Callers dispatch on the concrete pointer type
// with a type switch; Evaluate, IsCompatible, Validate and ToSpec all do so.
// Evaluation is pull based and never cached, so the same tree may be
// evaluated any number of times against a changing Context.
package resolver
