// Package videoinfo parses video identifiers out of user-entered URLs and
// renders provider ISO-8601 durations as table-friendly clock strings.
package videoinfo
