package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultPollTimeout = 10 * time.Second
	defaultBusyTimeout = 5 * time.Second
	defaultFeedTimeout = 15 * time.Second
	defaultAPIKeyEnv   = "PRICEFEED_API_KEY"
)

// Runtime is the validated, type-converted view of Config that the
// rest of the program consumes. String durations become time.Duration
// exactly once, here.
type Runtime struct {
	Raw Config

	PollTimeout time.Duration
	BusyTimeout time.Duration
	FeedTimeout time.Duration

	Window      time.Duration
	DedupWindow time.Duration

	APIKeyEnv string
}

// Load reads, strictly decodes, validates, and converts the config at
// path. Unknown keys are rejected so typos surface at startup rather
// than as silently ignored settings.
func Load(path string) (*Runtime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	jsonBytes, format, err := coerceToJSONBytes(path, data)
	if err != nil {
		return nil, fmt.Errorf("parse config (%s): %w", format, err)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config (%s): %w", format, err)
	}

	return build(cfg)
}

func build(cfg Config) (*Runtime, error) {
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return nil, fmt.Errorf("telegram.token is required")
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		return nil, fmt.Errorf("storage.path is required")
	}
	if strings.TrimSpace(cfg.Notify.Schedule) == "" {
		return nil, fmt.Errorf("notify.schedule is required")
	}
	if strings.TrimSpace(cfg.Notify.ActionURLBase) == "" {
		return nil, fmt.Errorf("notify.action_url_base is required")
	}
	if cfg.Notify.MinChangeH1 < 0 {
		return nil, fmt.Errorf("notify.min_change_h1 must be >= 0")
	}

	rt := &Runtime{Raw: cfg}

	var err error
	if rt.PollTimeout, err = ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, defaultPollTimeout); err != nil {
		return nil, err
	}
	if rt.BusyTimeout, err = ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, defaultBusyTimeout); err != nil {
		return nil, err
	}
	if rt.FeedTimeout, err = ParseDurationOrDefault("pricefeed.timeout", cfg.PriceFeed.Timeout, defaultFeedTimeout); err != nil {
		return nil, err
	}
	if rt.Window, err = ParseDurationField("notify.window", cfg.Notify.Window); err != nil {
		return nil, err
	}
	if rt.DedupWindow, err = ParseDurationField("notify.dedup_window", cfg.Notify.DedupWindow); err != nil {
		return nil, err
	}

	rt.APIKeyEnv = strings.TrimSpace(cfg.PriceFeed.APIKeyEnv)
	if rt.APIKeyEnv == "" {
		rt.APIKeyEnv = defaultAPIKeyEnv
	}
	return rt, nil
}
