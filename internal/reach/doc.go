// Package reach drives the reachability loop: it repeatedly transforms
// a set of bundles through the system dynamics, optionally re-optimizes
// their templates, splits oversized results, and accumulates one
// polytope-union snapshot per step into a [Flowpipe].
package reach
