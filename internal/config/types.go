package config

// Config is the full on-disk configuration. Duration-valued fields are
// Go duration strings (e.g. "30s", "10m") and are converted once at
// load time; see Runtime.
type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Logging   LoggingConfig   `json:"logging"`
	Storage   StorageConfig   `json:"storage"`
	PriceFeed PriceFeedConfig `json:"pricefeed"`
	Notify    NotifyConfig    `json:"notify"`
	Locales   LocalesConfig   `json:"locales,omitempty"`
	Pprof     PprofConfig     `json:"pprof,omitempty"`
}

// PprofConfig controls the optional profiling HTTP server. Prefer a
// loopback bind; a non-loopback bind requires a token or an explicit
// allow_insecure.
type PprofConfig struct {
	Enabled       bool   `json:"enabled"`
	Addr          string `json:"addr,omitempty"`
	Token         string `json:"token,omitempty"`
	AllowInsecure bool   `json:"allow_insecure,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// PollTimeout is a Go duration string (e.g. "10s").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type StorageConfig struct {
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string
}

// PriceFeedConfig configures the market-data provider. The API key is
// read from the environment, never from the config file.
type PriceFeedConfig struct {
	BaseURL   string `json:"base_url,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty"` // default: PRICEFEED_API_KEY
	Timeout   string `json:"timeout,omitempty"`     // Go duration string
}

type NotifyConfig struct {
	// Schedule is a cron expression; "@every 1m" style also works.
	Schedule string `json:"schedule"`

	Chains []string `json:"chains,omitempty"`
	// Window and DedupWindow are Go duration strings.
	Window      string  `json:"window,omitempty"`
	MinChangeH1 float64 `json:"min_change_h1,omitempty"`
	PerGroup    int     `json:"per_group,omitempty"`
	DedupWindow string  `json:"dedup_window,omitempty"`
	BatchSize   int     `json:"batch_size,omitempty"`
	RatePerSec  int     `json:"rate_per_sec,omitempty"`

	ActionURLBase string `json:"action_url_base"`
	SignalChannel string `json:"signal_channel,omitempty"`
}

// LocalesConfig points at an optional directory of translation
// overrides, watched for live edits.
type LocalesConfig struct {
	Dir string `json:"dir,omitempty"`
}
