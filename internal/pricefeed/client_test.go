package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logx "dexsignal/pkg/logx"
)

func TestHistoryRequestAndDecode(t *testing.T) {
	t.Parallel()

	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"type":    r.URL.Query().Get("type"),
			"address": r.URL.Query().Get("address"),
			"x-chain": r.Header.Get("x-chain"),
			"api-key": r.Header.Get("X-API-KEY"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"items":[
			{"unixTime":1700000000,"value":1.5},
			{"unixTime":1700003600,"value":1.75}
		]}}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "k"}, logx.Nop())
	series, err := c.History(context.Background(), "solana", "addr1", 3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(series) != 2 || series[0].Unix != 1700000000 || series[1].Price != 1.75 {
		t.Fatalf("unexpected series: %+v", series)
	}
	if gotQuery["type"] != "1H" {
		t.Fatalf("3-day-old token should request hourly candles, got %q", gotQuery["type"])
	}
	if gotQuery["address"] != "addr1" || gotQuery["x-chain"] != "solana" || gotQuery["api-key"] != "k" {
		t.Fatalf("unexpected request params: %v", gotQuery)
	}
}

func TestHistoryGranularityForYoungToken(t *testing.T) {
	t.Parallel()
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.URL.Query().Get("type")
		_, _ = w.Write([]byte(`{"success":true,"data":{"items":[]}}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, logx.Nop())
	if _, err := c.History(context.Background(), "bsc", "addr", 0.4); err != nil {
		t.Fatalf("History: %v", err)
	}
	if gotType != "5m" {
		t.Fatalf("sub-day token should request 5m candles, got %q", gotType)
	}
}

func TestHistoryHTTPError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, logx.Nop())
	if _, err := c.History(context.Background(), "solana", "addr", 3); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestTimeRangeCappedAt30Days(t *testing.T) {
	t.Parallel()
	c := New(Config{}, logx.Nop())
	fixed := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	from, to := c.timeRange(120)
	if to != fixed.Unix() {
		t.Fatalf("to = %d, want %d", to, fixed.Unix())
	}
	if got := to - from; got != 30*24*60*60 {
		t.Fatalf("window = %ds, want 30 days", got)
	}

	from, to = c.timeRange(2)
	if got := to - from; got != 2*24*60*60 {
		t.Fatalf("window = %ds, want 2 days", got)
	}
}
