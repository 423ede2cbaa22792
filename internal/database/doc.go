// Package database provides the key-addressable store abstraction the clans
// engine persists through.
//
// The Store interface is deliberately small: get/put/delete single keys,
// ordered listing by key prefix, a compare-free conditional put (PutIfAbsent)
// and an atomic counter (Incr). The domain engine serializes all mutations to
// one clan under that clan's lock, so the store itself only has to guarantee
// per-key atomicity. PutIfAbsent and Incr must be atomic across callers
// because they back invariants that span clans (one clan per player, the
// global clan-id counter).
//
// # Implementations
//
//   - Memory: process-local map store, used by tests and single-node runs.
//   - Redis: production backend (SET/SETNX/INCR/SCAN).
//
// # Error Handling
//
// Standard errors for calling code to check with errors.Is():
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // record absent
//	}
//
// ErrUnavailable wraps backend transport failures; the transport layer maps
// it to a service-level failure response, never to a domain error.
package database
