// Package app wires configuration, storage, transport, and the
// notification pipeline into a runnable service.
package app

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"dexsignal/internal/config"
	"dexsignal/internal/i18n"
	"dexsignal/internal/notify"
	"dexsignal/internal/observability/pprof"
	"dexsignal/internal/pricefeed"
	"dexsignal/internal/storage"
	telegram "dexsignal/internal/transport/telegram"
	logx "dexsignal/pkg/logx"
)

type App struct {
	rt *config.Runtime

	logs *logx.Service
	log  logx.Logger

	store   *storage.Store
	adapter *telegram.Adapter
	tr      *i18n.Translator
	notif   *notify.Service
	prof    *pprof.Service

	cron        *cron.Cron
	watchCancel context.CancelFunc
}

func NewApp(cfgPath string) (*App, error) {
	rt, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg := rt.Raw

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	store, err := storage.Open(storage.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: rt.BusyTimeout,
	}, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: rt.PollTimeout,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("telegram: %w", err)
	}

	tr, err := i18n.New(log.With(logx.String("comp", "i18n")))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("i18n: %w", err)
	}
	if dir := strings.TrimSpace(cfg.Locales.Dir); dir != "" {
		if err := tr.LoadDir(dir); err != nil {
			log.Warn("locale overrides not loaded", logx.String("dir", dir), logx.Err(err))
		}
	}

	feed := pricefeed.New(pricefeed.Config{
		BaseURL: cfg.PriceFeed.BaseURL,
		APIKey:  os.Getenv(rt.APIKeyEnv),
		Timeout: rt.FeedTimeout,
	}, log.With(logx.String("comp", "pricefeed")))

	notif := notify.New(notify.Config{
		Chains:        cfg.Notify.Chains,
		Window:        rt.Window,
		MinChangeH1:   cfg.Notify.MinChangeH1,
		PerGroup:      cfg.Notify.PerGroup,
		DedupWindow:   rt.DedupWindow,
		BatchSize:     cfg.Notify.BatchSize,
		RatePerSec:    cfg.Notify.RatePerSec,
		ActionURLBase: cfg.Notify.ActionURLBase,
		SignalChannel: cfg.Notify.SignalChannel,
	}, store, feed, adapter, tr, log.With(logx.String("comp", "notify")))

	prof := pprof.New(pprof.Config{
		Enabled:       cfg.Pprof.Enabled,
		Addr:          cfg.Pprof.Addr,
		Token:         cfg.Pprof.Token,
		AllowInsecure: cfg.Pprof.AllowInsecure,
	}, log.With(logx.String("comp", "pprof")))

	return &App{
		rt:      rt,
		logs:    logSvc,
		log:     log,
		store:   store,
		adapter: adapter,
		tr:      tr,
		notif:   notif,
		prof:    prof,
	}, nil
}

// Start schedules the notification cycle and returns; it does not
// block. The cycle runs until Stop or ctx cancellation.
func (a *App) Start(ctx context.Context) error {
	if err := a.prof.Start(); err != nil {
		return err
	}

	if strings.TrimSpace(a.rt.Raw.Locales.Dir) != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		a.watchCancel = cancel
		if err := a.tr.Watch(watchCtx, a.rt.Raw.Locales.Dir); err != nil {
			a.log.Warn("locale watch unavailable", logx.Err(err))
		}
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))

	job := cron.FuncJob(func() {
		defer func() {
			if rec := recover(); rec != nil {
				a.log.Error("cycle panicked",
					logx.Any("panic", rec),
					logx.String("stack", string(debug.Stack())))
			}
		}()
		if ctx.Err() != nil {
			return
		}
		if err := a.notif.RunCycle(ctx); err != nil {
			a.log.Error("cycle failed", logx.Err(err))
		}
	})
	if _, err := c.AddJob(a.rt.Raw.Notify.Schedule, job); err != nil {
		return fmt.Errorf("schedule %q: %w", a.rt.Raw.Notify.Schedule, err)
	}

	c.Start()
	a.cron = c
	a.log.Info("started", logx.String("schedule", a.rt.Raw.Notify.Schedule))
	return nil
}

// Stop halts the schedule, waits for an in-flight cycle, and releases
// resources.
func (a *App) Stop() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	if a.watchCancel != nil {
		a.watchCancel()
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	a.prof.Stop(stopCtx)
	cancel()
	if err := a.store.Close(); err != nil {
		a.log.Warn("storage close", logx.Err(err))
	}
	a.log.Info("stopped")
}
