// Package storage persists token snapshots and notification recipients.
//
// It currently supports:
//   - Time-windowed, chain-filtered, per-group top-N snapshot selection
//   - Recency lookups used for symbol-level dedup and rally computation
//   - Batched sent-marking after a delivery pass
package storage
