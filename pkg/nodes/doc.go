// Package nodes is the standard node library.
//
// Default returns a registry holding every type in the package; Register adds
// them to an existing registry. Actions implement Executor and conditions
// implement Evaluator so hosts can drive a built graph without knowing the
// concrete types.
package nodes
