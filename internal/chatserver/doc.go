// Package chatserver implements the chatwire server core.
//
// # Architecture
//
//   - Server: listens for TCP connections, tracks them and runs the accept loop
//   - Registry: maps room names to rooms; find-or-create is its only mutation
//   - Room: named broadcast domain with lock-guarded membership
//   - MessageQueue: per-user FIFO of pending deliveries with a bounded consumer wait
//   - worker: per-connection goroutine running the login/sender/receiver state machine
//
// # Protocol flow
//
// A connection authenticates with one slogin or rlogin frame. Senders then
// issue join/leave/sendall/quit commands and get ok/err responses. Receivers
// issue exactly one join and afterwards only consume: the worker forwards
// every message broadcast into the room until a write fails.
//
// # Locking
//
// The registry, each room and each queue carry their own lock. No lock is
// ever held across socket I/O, so one stalled client cannot delay
// broadcasts to others.
package chatserver
