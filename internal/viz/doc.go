// Package viz renders flowpipes in the terminal: static per-variable
// interval charts and an interactive stepper for walking a computed
// flowpipe step by step.
package viz
