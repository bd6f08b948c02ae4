/*
Package runtime holds the executable form of a Statescript graph.

A Graph owns one canonical EntryNode, the nodes added by the builder, the
connections between their ports and the variable store. Nodes expose their
ports, declared property slots and resolver Bindings; ReadInput and
WriteOutput evaluate those bindings against a Context on demand.

The package does not walk graphs. Execution engines consume Graph.Next and
the node categories to drive control flow.
*/
package runtime
