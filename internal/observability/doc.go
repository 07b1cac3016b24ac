// Package observability records registry events as JSON Lines and derives
// metrics from them on demand.
package observability
