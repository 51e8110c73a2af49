package notify

import (
	"context"
	"fmt"
	"time"

	"dexsignal/internal/chart"
	"dexsignal/internal/domain"
	"dexsignal/internal/i18n"
	"dexsignal/internal/timeseries"
	logx "dexsignal/pkg/logx"
)

// builder prepares NotificationContent for one language. Chart
// artifacts are shared across languages through the cycle cache, so a
// token's chart is rendered at most once per cycle no matter how many
// language groups or recipients consume it.
type builder struct {
	cfg    Config
	store  Store
	prices PriceHistory
	tr     *i18n.Translator
	log    logx.Logger
	now    func() time.Time
}

// build walks candidates in selector order and prepares content for the
// given language. Any per-token failure is logged and skips only that
// token.
func (b *builder) build(ctx context.Context, candidates []domain.TokenSnapshot, lang string, cache *chart.Cache) []domain.NotificationContent {
	out := make([]domain.NotificationContent, 0, len(candidates))

	for _, token := range candidates {
		content, skip, err := b.buildOne(ctx, token, lang, cache)
		if err != nil {
			b.log.Warn("content build failed, skipping token",
				logx.String("symbol", token.Symbol),
				logx.String("address", token.Address),
				logx.String("lang", lang),
				logx.Err(err))
			continue
		}
		if skip {
			continue
		}
		out = append(out, content)
	}
	return out
}

func (b *builder) buildOne(ctx context.Context, token domain.TokenSnapshot, lang string, cache *chart.Cache) (domain.NotificationContent, bool, error) {
	// Symbol-level recency dedup. Independent of the selector's own
	// window: two addresses can share a symbol across chains.
	recent, err := b.store.RecentlySentSymbol(ctx, token.Symbol, b.now().Add(-b.cfg.DedupWindow))
	if err != nil {
		return domain.NotificationContent{}, false, fmt.Errorf("dedup check: %w", err)
	}
	if recent {
		b.log.Debug("skipping recently sent symbol", logx.String("symbol", token.Symbol))
		return domain.NotificationContent{}, true, nil
	}

	rally, err := b.rallyText(ctx, token, lang)
	if err != nil {
		return domain.NotificationContent{}, false, err
	}

	image, err := cache.GetOrRender(token.Address, func() ([]byte, error) {
		return b.renderChart(ctx, token)
	})
	if err != nil {
		return domain.NotificationContent{}, false, fmt.Errorf("chart: %w", err)
	}

	msg := tokenMessage(b.tr, lang, token, b.cfg.SignalChannel)
	if rally != "" {
		msg += "\n" + rally
	}

	return domain.NotificationContent{
		Token:     token,
		Message:   msg,
		Chart:     image,
		ActionURL: b.actionURL(token),
	}, false, nil
}

// rallyText computes the gain since the token's first recorded snapshot.
// "First" is the row with minimum insert time (id breaks ties). The
// first-ever record for an address gets an extra first-signal marker.
func (b *builder) rallyText(ctx context.Context, token domain.TokenSnapshot, lang string) (string, error) {
	first, err := b.store.FirstSnapshot(ctx, token.Address)
	if err != nil {
		return "", fmt.Errorf("first snapshot: %w", err)
	}
	if first == nil || first.PriceUSD <= 0 || token.PriceUSD <= first.PriceUSD {
		return "", nil
	}

	count, err := b.store.SnapshotCount(ctx, token.Address)
	if err != nil {
		return "", fmt.Errorf("snapshot count: %w", err)
	}

	gain := (token.PriceUSD - first.PriceUSD) / first.PriceUSD * 100
	na := b.tr.T(lang, "not_available")
	text := b.tr.Tf(lang, "rally_message", map[string]string{
		"percent": FormatPercent(&gain, false, na),
	})
	if count == 1 {
		text += "\n❗️" + b.tr.T(lang, "first_signal") + "❗️"
	}
	return text, nil
}

func (b *builder) renderChart(ctx context.Context, token domain.TokenSnapshot) ([]byte, error) {
	series, err := b.prices.History(ctx, token.ChainID, token.Address, token.LaunchedDays)
	if err != nil {
		// Missing provider data degrades to an empty chart; the
		// notification itself still goes out.
		b.log.Warn("price history unavailable",
			logx.String("address", token.Address), logx.Err(err))
		series = nil
	}

	history, err := b.store.SnapshotsForAddress(ctx, token.Address)
	if err != nil {
		return nil, fmt.Errorf("alert history: %w", err)
	}
	raw := make([]domain.AlertMarker, 0, len(history))
	for _, h := range history {
		raw = append(raw, domain.AlertMarker{Unix: h.InsertTime.Unix(), Price: h.PriceUSD})
	}

	step := timeseries.StepFor(token.LaunchedDays)
	markers := timeseries.Align(raw, series, step)
	return chart.Render(series, token.Symbol, token.Name, markers)
}

func (b *builder) actionURL(token domain.TokenSnapshot) string {
	return fmt.Sprintf("%s?startapp=%s-%s",
		b.cfg.ActionURLBase, domain.ChainNumericID(token.ChainID), token.PairAddress)
}
