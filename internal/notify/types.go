package notify

import (
	"context"
	"time"

	"dexsignal/internal/domain"
	"dexsignal/internal/storage"
)

// Config controls one notification cycle.
type Config struct {
	// Chains is the allowed chain set for candidate selection.
	Chains []string
	// Window bounds how old an unsent snapshot may be.
	Window time.Duration
	// MinChangeH1 is the exclusive 1h price-change threshold in percent.
	MinChangeH1 float64
	// PerGroup caps candidates per (chain, group) partition.
	PerGroup int
	// DedupWindow suppresses tokens whose symbol was sent recently.
	DedupWindow time.Duration
	// BatchSize is the number of recipients delivered concurrently.
	BatchSize int
	// RatePerSec bounds outbound sends across all batches.
	RatePerSec int
	// ActionURLBase is the miniapp deep-link prefix for the CTA button.
	ActionURLBase string
	// SignalChannel is an optional HTML link advertised in captions.
	SignalChannel string
}

func (c *Config) applyDefaults() {
	if len(c.Chains) == 0 {
		c.Chains = []string{"solana", "bsc", "base", "ethereum"}
	}
	if c.Window <= 0 {
		c.Window = 10 * time.Minute
	}
	if c.MinChangeH1 == 0 {
		c.MinChangeH1 = 5
	}
	if c.PerGroup <= 0 {
		c.PerGroup = 5
	}
	if c.DedupWindow <= 0 {
		c.DedupWindow = time.Hour
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.RatePerSec <= 0 {
		c.RatePerSec = 20
	}
}

// Store is the persistence capability the pipeline consumes.
type Store interface {
	EligibleSnapshots(ctx context.Context, q storage.EligibleQuery) ([]domain.TokenSnapshot, error)
	ActiveRecipients(ctx context.Context) ([]domain.Recipient, error)
	FirstSnapshot(ctx context.Context, address string) (*domain.TokenSnapshot, error)
	SnapshotCount(ctx context.Context, address string) (int, error)
	RecentlySentSymbol(ctx context.Context, symbol string, since time.Time) (bool, error)
	SnapshotsForAddress(ctx context.Context, address string) ([]domain.TokenSnapshot, error)
	MarkSent(ctx context.Context, ids []int64, at time.Time) error
}

// PriceHistory is the external price-data capability.
type PriceHistory interface {
	History(ctx context.Context, chain, address string, launchedDays float64) ([]domain.PricePoint, error)
}
