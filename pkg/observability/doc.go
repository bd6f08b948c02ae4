/*
Package observability provides tools for monitoring graph builds.

It includes lifecycle hooks that log build events, Prometheus metrics fed by
the same hooks, and Chain to combine several hook sets into one.
*/
package observability
