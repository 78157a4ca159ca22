// Package notifications delivers ingestion events via ntfy.
//
// The ntfy implementation posts to the topic URL configured in config.toml and
// degrades to a no-op when no topic is set. Individual events can be switched
// off in the [notifications] section.
package notifications
