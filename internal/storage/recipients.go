package storage

import (
	"context"
	"encoding/json"
	"strings"

	"dexsignal/internal/domain"
	logx "dexsignal/pkg/logx"
)

// UpsertRecipient inserts or updates a recipient keyed by telegram id.
func (s *Store) UpsertRecipient(ctx context.Context, r domain.Recipient, active bool) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	subs, err := json.Marshal(r.SubscribedChains)
	if err != nil {
		return err
	}
	lang := strings.TrimSpace(r.Language)
	if lang == "" {
		lang = "en"
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recipients(telegram_id, language, subscriptions, active)
		 VALUES(?,?,?,?)
		 ON CONFLICT(telegram_id) DO UPDATE SET
		   language=excluded.language,
		   subscriptions=excluded.subscriptions,
		   active=excluded.active`,
		r.TelegramID, lang, string(subs), active,
	)
	return err
}

// ActiveRecipients returns all active recipients. Subscription lists
// that are NULL, empty, or malformed JSON scan to an empty set: the
// recipient stays in the result but matches no chain.
func (s *Store) ActiveRecipients(ctx context.Context) ([]domain.Recipient, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, telegram_id, language, subscriptions FROM recipients WHERE active = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Recipient
	for rows.Next() {
		var (
			r    domain.Recipient
			subs string
		)
		if err := rows.Scan(&r.ID, &r.TelegramID, &r.Language, &subs); err != nil {
			return nil, err
		}
		r.SubscribedChains = parseSubscriptions(subs, s.log, r.TelegramID)
		if strings.TrimSpace(r.Language) == "" {
			r.Language = "en"
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func parseSubscriptions(raw string, log logx.Logger, telegramID int64) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" || raw == "null" {
		return nil
	}
	var subs []string
	if err := json.Unmarshal([]byte(raw), &subs); err != nil {
		log.Warn("recipient has malformed subscriptions, treating as none",
			logx.Int64("telegram_id", telegramID), logx.Err(err))
		return nil
	}
	out := subs[:0]
	for _, c := range subs {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
