// Package localstore persists client state in SQLite.
//
// Two tables back the client: a small key/value table holding values such as
// the backend API key, and job_history recording the terminal outcome of every
// ingestion job. The dashboard usage series and the history command read from
// job_history.
//
// The schema version is checked on open. Schema changes bump schemaVersion in
// schema.go; users delete the database to adopt the new schema.
package localstore
