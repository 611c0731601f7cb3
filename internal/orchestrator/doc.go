// Package orchestrator runs the domain loads of one partition in a fixed
// order, stopping at the first failure.
//
// Each domain runs as a separate process, so a failed domain's connection
// and transaction are torn down with the process and cannot leak into the
// next step. Committed domains are not compensated when a later one fails.
package orchestrator
