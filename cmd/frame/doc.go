// Command frame is the operator CLI for the video table: it ingests videos
// in-process, runs or inspects the framed daemon, and reports on the local
// job history, the gap-analysis artifact and the ingestion backend.
package main
