// Package observability records calculation and report events as JSON Lines
// and derives usage metrics from them on demand.
package observability
