// Package bootstrap assembles the provider clients, metadata gateway, local
// store and notifier from configuration. Both binaries build their sessions
// through it.
package bootstrap
