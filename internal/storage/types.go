package storage

import (
	"errors"
	"time"
)

var ErrClosed = errors.New("storage closed")

// Config configures the SQLite-backed store.
type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// EligibleQuery parameterizes the candidate selection query.
type EligibleQuery struct {
	Now         time.Time
	Window      time.Duration // how far back insert_time may lie
	Chains      []string      // allowed chain ids (lowercase)
	MinChangeH1 float64       // exclusive lower bound on 1h price change
	PerGroup    int           // max rows per (chain_id, group_id) partition
}
