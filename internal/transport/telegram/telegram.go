// Package telegram implements transport.Adapter on top of telebot.
package telegram

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	kit "dexsignal/internal/transport"
	logx "dexsignal/pkg/logx"
)

type Config struct {
	Token       string
	PollTimeout time.Duration
}

type Adapter struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Adapter{cfg: cfg, log: log, bot: b}, nil
}

func (a *Adapter) Chat(ctx context.Context, chatID int64) (kit.ChatInfo, error) {
	if err := ctxErr(ctx); err != nil {
		return kit.ChatInfo{}, err
	}
	chat, err := a.bot.ChatByID(chatID)
	if err != nil {
		return kit.ChatInfo{}, err
	}
	return kit.ChatInfo{ID: chat.ID, Type: chatType(chat.Type)}, nil
}

func (a *Adapter) SendPhoto(ctx context.Context, to kit.ChatTarget, msg kit.PhotoMessage) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}

	opt := &tele.SendOptions{ParseMode: tele.ModeHTML}
	if msg.Button != nil {
		rm := &tele.ReplyMarkup{}
		rm.Inline(rm.Row(rm.URL(msg.Button.Text, msg.Button.URL)))
		opt.ReplyMarkup = rm
	}

	photo := &tele.Photo{
		File:    tele.FromReader(bytes.NewReader(msg.Image)),
		Caption: msg.Caption,
	}
	_, err := a.bot.Send(&tele.Chat{ID: to.ChatID}, photo, opt)
	return err
}

func chatType(t tele.ChatType) kit.ChatType {
	switch t {
	case tele.ChatPrivate:
		return kit.ChatPrivate
	case tele.ChatGroup:
		return kit.ChatGroup
	case tele.ChatSuperGroup:
		return kit.ChatSuperGroup
	case tele.ChatChannel, tele.ChatChannelPrivate:
		return kit.ChatChannel
	default:
		return kit.ChatUnknown
	}
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
