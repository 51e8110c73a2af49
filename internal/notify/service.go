package notify

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"dexsignal/internal/chart"
	"dexsignal/internal/domain"
	"dexsignal/internal/i18n"
	"dexsignal/internal/storage"
	kit "dexsignal/internal/transport"
	logx "dexsignal/pkg/logx"
)

// Service runs the notification pipeline: select candidates, prepare
// localized content, fan it out to group chats, and mark everything
// attempted as sent.
type Service struct {
	cfg    Config
	store  Store
	prices PriceHistory
	tr     *i18n.Translator
	log    logx.Logger

	builder    *builder
	dispatcher *dispatcher

	now func() time.Time
}

func New(cfg Config, store Store, prices PriceHistory, adapter kit.Adapter, tr *i18n.Translator, log logx.Logger) *Service {
	cfg.applyDefaults()
	now := time.Now

	s := &Service{
		cfg:    cfg,
		store:  store,
		prices: prices,
		tr:     tr,
		log:    log,
		now:    now,
	}
	s.builder = &builder{
		cfg:    cfg,
		store:  store,
		prices: prices,
		tr:     tr,
		log:    log,
		now:    func() time.Time { return s.now() },
	}
	s.dispatcher = &dispatcher{
		cfg:     cfg,
		adapter: adapter,
		tr:      tr,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
		log:     log,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	return s
}

// RunCycle executes one full pipeline pass. Selection errors abort the
// cycle without marking anything sent; once delivery has been attempted
// the candidates are marked sent regardless of per-recipient outcomes,
// so a tokenless cycle later cannot re-alert them.
func (s *Service) RunCycle(ctx context.Context) error {
	start := s.now()

	candidates, err := s.store.EligibleSnapshots(ctx, storage.EligibleQuery{
		Now:         start,
		Window:      s.cfg.Window,
		Chains:      s.cfg.Chains,
		MinChangeH1: s.cfg.MinChangeH1,
		PerGroup:    s.cfg.PerGroup,
	})
	if err != nil {
		return fmt.Errorf("select candidates: %w", err)
	}
	if len(candidates) == 0 {
		s.log.Debug("no eligible tokens this cycle")
		return nil
	}
	s.log.Info("cycle started",
		logx.Int("candidates", len(candidates)),
		logx.Time("at", start))

	recipients, err := s.store.ActiveRecipients(ctx)
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}

	byLang := groupByLanguage(recipients)
	cache := chart.NewCache()

	for _, lang := range sortedLanguages(byLang) {
		group := byLang[lang]
		content := s.builder.build(ctx, candidates, lang, cache)
		if len(content) == 0 {
			continue
		}
		s.dispatcher.deliver(ctx, group, content, lang)
	}

	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	if err := s.store.MarkSent(ctx, ids, s.now()); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}

	s.log.Info("cycle finished",
		logx.Int("tokens", len(candidates)),
		logx.Int("recipients", len(recipients)),
		logx.Int("charts_rendered", cache.Renders()),
		logx.Duration("took", s.now().Sub(start)))
	return nil
}

func groupByLanguage(recipients []domain.Recipient) map[string][]domain.Recipient {
	out := make(map[string][]domain.Recipient)
	for _, r := range recipients {
		out[r.Language] = append(out[r.Language], r)
	}
	return out
}

// sortedLanguages keeps per-cycle processing order deterministic.
func sortedLanguages(byLang map[string][]domain.Recipient) []string {
	langs := make([]string, 0, len(byLang))
	for lang := range byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
