package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dexsignal/internal/domain"
)

const snapshotColumns = `id, address, symbol, name, chain_id, group_id, "rank",
	price_usd, price_change_m5, price_change_h1, price_change_h24,
	market_cap_kusd, liquidity_kusd, volume_h24_kusd,
	lp_locked_percent, top10_percent, risk_level, launched_days,
	website, twitter, telegram, dexscreener, pair_address,
	insert_time, sent_time`

// InsertSnapshot stores a new observation row and returns its id.
func (s *Store) InsertSnapshot(ctx context.Context, t domain.TokenSnapshot) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}
	var sent any
	if t.SentTime != nil {
		sent = t.SentTime.UnixMilli()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO token_snapshots(
			address, symbol, name, chain_id, group_id, "rank",
			price_usd, price_change_m5, price_change_h1, price_change_h24,
			market_cap_kusd, liquidity_kusd, volume_h24_kusd,
			lp_locked_percent, top10_percent, risk_level, launched_days,
			website, twitter, telegram, dexscreener, pair_address,
			insert_time, sent_time)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.Address, t.Symbol, t.Name, t.ChainID, t.GroupID, t.Rank,
		t.PriceUSD, nullFloat(t.PriceChangeM5), nullFloat(t.PriceChangeH1), nullFloat(t.PriceChange24),
		nullFloat(t.MarketCapKUSD), nullFloat(t.LiquidityKUSD), nullFloat(t.Volume24KUSD),
		nullFloat(t.LPLockedPercent), nullFloat(t.Top10Percent), t.RiskLevel, t.LaunchedDays,
		t.Website, t.Twitter, t.Telegram, t.DexScreener, t.PairAddress,
		t.InsertTime.UnixMilli(), sent,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// EligibleSnapshots returns unsent, fresh snapshots on allowed chains
// whose 1h change exceeds the threshold, capped at q.PerGroup rows per
// (chain_id, group_id) partition ordered by rank, and sorted by group
// then rank for iteration.
//
// The query does not mutate anything; re-running it within a cycle
// yields the same rows.
func (s *Store) EligibleSnapshots(ctx context.Context, q EligibleQuery) ([]domain.TokenSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	if len(q.Chains) == 0 || q.PerGroup <= 0 {
		return nil, nil
	}

	args := make([]any, 0, len(q.Chains)+3)
	args = append(args, q.Now.Add(-q.Window).UnixMilli())
	for _, c := range q.Chains {
		args = append(args, c)
	}
	args = append(args, q.MinChangeH1, q.PerGroup)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+` FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY chain_id, group_id ORDER BY "rank") AS row_num
			FROM token_snapshots
			WHERE sent_time IS NULL
			  AND insert_time >= ?
			  AND chain_id IN (`+placeholders(len(q.Chains))+`)
			  AND price_change_h1 > ?
		)
		WHERE row_num <= ?
		ORDER BY group_id, "rank"`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// FirstSnapshot returns the oldest recorded snapshot for an address.
// The tie on equal insert times is broken by lowest id, so "first" is
// deterministic. Returns (nil, nil) when the address has no history.
func (s *Store) FirstSnapshot(ctx context.Context, address string) (*domain.TokenSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM token_snapshots
		 WHERE address = ? ORDER BY insert_time ASC, id ASC LIMIT 1`, address)
	t, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SnapshotCount returns the total number of recorded snapshots for an
// address.
func (s *Store) SnapshotCount(ctx context.Context, address string) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM token_snapshots WHERE address = ?`, address).Scan(&n)
	return n, err
}

// RecentlySentSymbol reports whether any snapshot with the given symbol
// (regardless of address or chain) was marked sent at or after since.
func (s *Store) RecentlySentSymbol(ctx context.Context, symbol string, since time.Time) (bool, error) {
	if s == nil || s.db == nil {
		return false, ErrClosed
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM token_snapshots
		 WHERE symbol = ? AND sent_time IS NOT NULL AND sent_time >= ?
		 LIMIT 1`, symbol, since.UnixMilli()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SnapshotsForAddress returns all history rows for an address ordered
// by insert time ascending. Used to derive chart alert markers.
func (s *Store) SnapshotsForAddress(ctx context.Context, address string) ([]domain.TokenSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM token_snapshots
		 WHERE address = ? ORDER BY insert_time ASC, id ASC`, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// LatestByChain returns up to perChain of the most recently sent
// fresh snapshots per chain, ordered by chain then rank. Used by the
// on-demand rank view.
func (s *Store) LatestByChain(ctx context.Context, since time.Time, chains []string, perChain int) ([]domain.TokenSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	if len(chains) == 0 || perChain <= 0 {
		return nil, nil
	}
	args := make([]any, 0, len(chains)+2)
	args = append(args, since.UnixMilli())
	for _, c := range chains {
		args = append(args, c)
	}
	args = append(args, perChain)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+` FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY chain_id ORDER BY sent_time DESC) AS row_num
			FROM token_snapshots
			WHERE insert_time >= ?
			  AND chain_id IN (`+placeholders(len(chains))+`)
			  AND price_change_h1 > 0
		)
		WHERE row_num <= ?
		ORDER BY chain_id, "rank"`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// MarkSent stamps sent_time on all given snapshot ids in one statement.
// Rows that already carry a sent_time keep their original stamp.
func (s *Store) MarkSent(ctx context.Context, ids []int64, at time.Time) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, at.UnixMilli())
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE token_snapshots SET sent_time = ?
		 WHERE id IN (`+placeholders(len(ids))+`) AND sent_time IS NULL`, args...)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (domain.TokenSnapshot, error) {
	var (
		t               domain.TokenSnapshot
		m5, h1, h24     sql.NullFloat64
		mcap, liq, vol  sql.NullFloat64
		lpLocked, top10 sql.NullFloat64
		insertMS        int64
		sentMS          sql.NullInt64
	)
	err := row.Scan(
		&t.ID, &t.Address, &t.Symbol, &t.Name, &t.ChainID, &t.GroupID, &t.Rank,
		&t.PriceUSD, &m5, &h1, &h24,
		&mcap, &liq, &vol,
		&lpLocked, &top10, &t.RiskLevel, &t.LaunchedDays,
		&t.Website, &t.Twitter, &t.Telegram, &t.DexScreener, &t.PairAddress,
		&insertMS, &sentMS,
	)
	if err != nil {
		return domain.TokenSnapshot{}, err
	}
	t.PriceChangeM5 = floatPtr(m5)
	t.PriceChangeH1 = floatPtr(h1)
	t.PriceChange24 = floatPtr(h24)
	t.MarketCapKUSD = floatPtr(mcap)
	t.LiquidityKUSD = floatPtr(liq)
	t.Volume24KUSD = floatPtr(vol)
	t.LPLockedPercent = floatPtr(lpLocked)
	t.Top10Percent = floatPtr(top10)
	t.InsertTime = time.UnixMilli(insertMS).UTC()
	if sentMS.Valid {
		ts := time.UnixMilli(sentMS.Int64).UTC()
		t.SentTime = &ts
	}
	return t, nil
}

func scanSnapshots(rows *sql.Rows) ([]domain.TokenSnapshot, error) {
	var out []domain.TokenSnapshot
	for rows.Next() {
		t, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
