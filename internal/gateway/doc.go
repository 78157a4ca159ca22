// Package gateway is the single entry point for external video metadata.
//
// It normalizes provider responses into Metadata, caches lookups in an LRU,
// discovers related videos through the search provider, and produces
// best-effort topic summaries. Lookup failures are classified with the
// services error markers; summary failures are logged and never returned.
package gateway
