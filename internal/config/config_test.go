package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

const validYAML = `
telegram:
  token: "123:abc"
  poll_timeout: "25s"
logging:
  level: debug
  console: true
storage:
  path: ./data/bot.db
pricefeed:
  base_url: https://api.example.com
  api_key_env: MY_FEED_KEY
  timeout: "5s"
notify:
  schedule: "*/2 * * * *"
  chains: [solana, bsc]
  window: "10m"
  dedup_window: "1h"
  action_url_base: "https://t.me/bot/app"
locales:
  dir: ./locales
`

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	rt, err := Load(writeConfig(t, "config.yaml", validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if rt.Raw.Telegram.Token != "123:abc" {
		t.Errorf("token = %q", rt.Raw.Telegram.Token)
	}
	if rt.PollTimeout != 25*time.Second {
		t.Errorf("PollTimeout = %v", rt.PollTimeout)
	}
	if rt.Window != 10*time.Minute {
		t.Errorf("Window = %v", rt.Window)
	}
	if rt.DedupWindow != time.Hour {
		t.Errorf("DedupWindow = %v", rt.DedupWindow)
	}
	if rt.FeedTimeout != 5*time.Second {
		t.Errorf("FeedTimeout = %v", rt.FeedTimeout)
	}
	if rt.APIKeyEnv != "MY_FEED_KEY" {
		t.Errorf("APIKeyEnv = %q", rt.APIKeyEnv)
	}
	if got := rt.Raw.Notify.Chains; len(got) != 2 || got[0] != "solana" {
		t.Errorf("Chains = %v", got)
	}
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	body := `{
  "telegram": {"token": "123:abc"},
  "logging": {"level": "info", "console": true, "file": {"enabled": false, "path": ""}},
  "storage": {"path": "./bot.db"},
  "pricefeed": {},
  "notify": {"schedule": "@every 1m", "action_url_base": "https://t.me/bot/app"}
}`
	rt, err := Load(writeConfig(t, "config.json", body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rt.BusyTimeout != defaultBusyTimeout {
		t.Errorf("BusyTimeout = %v, want default", rt.BusyTimeout)
	}
	if rt.APIKeyEnv != defaultAPIKeyEnv {
		t.Errorf("APIKeyEnv = %q, want default", rt.APIKeyEnv)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	body := strings.Replace(validYAML, "locales:", "locals:", 1)
	if _, err := Load(writeConfig(t, "config.yaml", body)); err == nil {
		t.Fatal("expected unknown-key error")
	}
}

func TestLoadValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			"missing token",
			func(s string) string { return strings.Replace(s, `token: "123:abc"`, `token: ""`, 1) },
			"telegram.token",
		},
		{
			"missing storage path",
			func(s string) string { return strings.Replace(s, "path: ./data/bot.db", `path: ""`, 1) },
			"storage.path",
		},
		{
			"missing schedule",
			func(s string) string { return strings.Replace(s, `schedule: "*/2 * * * *"`, `schedule: ""`, 1) },
			"notify.schedule",
		},
		{
			"bad duration",
			func(s string) string { return strings.Replace(s, `window: "10m"`, `window: "ten minutes"`, 1) },
			"notify.window",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, "config.yaml", tt.mutate(validYAML)))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
