// Package daemonrun wires configuration, logging and the frame services into
// a running daemon process. It owns signal handling, the pid file and the
// per-run log file, and is shared by framed and `frame serve`.
package daemonrun
