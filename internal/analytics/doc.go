// Package analytics builds the dashboard data sources: the reshaped content
// gap analysis artifact and the per-day processing usage series.
package analytics
