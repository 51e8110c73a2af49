package notify

import (
	"context"
	"math/rand"
	"runtime/debug"
	"sync"

	"golang.org/x/time/rate"

	"dexsignal/internal/domain"
	"dexsignal/internal/i18n"
	kit "dexsignal/internal/transport"
	logx "dexsignal/pkg/logx"
)

// dispatcher fans prepared content out to recipients. Recipients are
// shuffled, split into fixed-size batches, and each batch is delivered
// concurrently while batches run sequentially, bounding pressure on the
// messaging API. A failure (or panic) delivering to one recipient never
// affects the others and never aborts the cycle.
type dispatcher struct {
	cfg     Config
	adapter kit.Adapter
	tr      *i18n.Translator
	limiter *rate.Limiter
	log     logx.Logger
	rng     *rand.Rand
}

// deliver sends the language's content to every eligible recipient in
// the group. It returns once all batches completed; ctx cancellation is
// honored at batch boundaries.
func (d *dispatcher) deliver(ctx context.Context, recipients []domain.Recipient, content []domain.NotificationContent, lang string) {
	if len(recipients) == 0 || len(content) == 0 {
		return
	}

	shuffled := d.shuffle(recipients)
	batchSize := d.cfg.BatchSize

	for start := 0; start < len(shuffled); start += batchSize {
		if ctx.Err() != nil {
			d.log.Warn("delivery cancelled mid-cycle",
				logx.String("lang", lang), logx.Int("delivered_upto", start))
			return
		}
		end := start + batchSize
		if end > len(shuffled) {
			end = len(shuffled)
		}
		batch := shuffled[start:end]

		var wg sync.WaitGroup
		for _, r := range batch {
			r := r
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() {
					if rec := recover(); rec != nil {
						d.log.Error("panic delivering to recipient",
							logx.Int64("telegram_id", r.TelegramID),
							logx.Any("panic", rec),
							logx.String("stack", string(debug.Stack())))
					}
				}()
				d.deliverToRecipient(ctx, r, content, lang)
			}()
		}
		wg.Wait()

		d.log.Debug("batch delivered",
			logx.String("lang", lang),
			logx.Int("batch_start", start), logx.Int("batch_size", len(batch)))
	}
}

func (d *dispatcher) deliverToRecipient(ctx context.Context, r domain.Recipient, content []domain.NotificationContent, lang string) {
	// Only group-type chats qualify; private chats and anything we
	// cannot look up are skipped silently.
	info, err := d.adapter.Chat(ctx, r.TelegramID)
	if err != nil {
		d.log.Debug("chat lookup failed, skipping recipient",
			logx.Int64("telegram_id", r.TelegramID), logx.Err(err))
		return
	}
	if !info.Type.IsGroup() {
		return
	}

	for _, c := range content {
		if !r.SubscribedTo(c.Token.ChainID) {
			continue
		}
		d.sendOne(ctx, r, c, lang)
	}
}

func (d *dispatcher) sendOne(ctx context.Context, r domain.Recipient, c domain.NotificationContent, lang string) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return
		}
	}

	msg := kit.PhotoMessage{
		Image:   c.Chart,
		Caption: c.Message,
		Button: &kit.URLButton{
			Text: "🚀 " + d.tr.T(lang, "open_bot_button"),
			URL:  c.ActionURL,
		},
	}
	if err := d.adapter.SendPhoto(ctx, kit.ChatTarget{ChatID: r.TelegramID}, msg); err != nil {
		d.log.Warn("send failed",
			logx.Int64("telegram_id", r.TelegramID),
			logx.String("symbol", c.Token.Symbol),
			logx.Err(err))
	}
}

// shuffle returns a uniformly shuffled copy so repeated cycles don't
// systematically favor early-inserted recipients.
func (d *dispatcher) shuffle(recipients []domain.Recipient) []domain.Recipient {
	out := append([]domain.Recipient(nil), recipients...)
	d.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
