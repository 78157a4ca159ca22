// Package rows holds the ordered table of video rows shared by the session,
// the reveal sequencer, the suggestion expander, and the ingestion queue.
//
// All mutation goes through one mutex. Readers get copies, so a snapshot never
// changes underneath its holder. Updates to an unknown row ID are no-ops, which
// lets late writers (reveal steps, enrichment, queue status) target rows
// without coordinating on their lifetime. Rows are never removed.
//
// Observers registered with Observe receive change events in mutation order;
// they run outside the store lock and may read it, but must not mutate it.
package rows
