package core

// Receipt / Commit (C9): aggregates a transaction's outputs, logs, new
// addresses, and optional commit/timing data into the wire-level record
// described in §6.

// Receipt is the record produced by executing a transaction.
type Receipt struct {
	Err        error
	Outputs    []Value
	Logs       []LogEntry
	NewAddrs   []Address
	Commit     *CommitReceipt // present only on success
	ElapsedNS  int64
}

// Success reports whether the transaction committed.
func (r *Receipt) Success() bool { return r.Err == nil }
