package notify

import (
	"strings"
	"testing"
	"time"

	"dexsignal/internal/domain"
	"dexsignal/internal/i18n"
	logx "dexsignal/pkg/logx"
)

func testTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.New(logx.Nop())
	if err != nil {
		t.Fatalf("i18n.New: %v", err)
	}
	return tr
}

func fptr(v float64) *float64 { return &v }

func TestFormatPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		v        *float64
		multiply bool
		want     string
	}{
		{"nil", nil, false, "N/A"},
		{"zero", fptr(0), false, "N/A"},
		{"rounds half up", fptr(8.2), false, "8%"},
		{"rounds up", fptr(8.6), false, "9%"},
		{"negative", fptr(-3.4), false, "-3%"},
		{"ratio scaled", fptr(0.97), true, "97%"},
		{"ratio full", fptr(1.0), true, "100%"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatPercent(tt.v, tt.multiply, "N/A"); got != tt.want {
				t.Errorf("FormatPercent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    *float64
		want string
	}{
		{"nil", nil, "N/A"},
		{"small", fptr(950), "950"},
		{"thousands", fptr(1234.6), "1,235"},
		{"millions", fptr(1234567), "1,234,567"},
		{"negative", fptr(-4200), "-4,200"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatNumber(tt.v, "N/A"); got != tt.want {
				t.Errorf("FormatNumber() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRiskLabel(t *testing.T) {
	t.Parallel()
	tr := testTranslator(t)

	tests := []struct {
		level string
		want  string
	}{
		{"low", "🟢 Low"},
		{"Medium", "🟡 Medium"},
		{"HIGH", "🔴 High"},
		{"", "⚪ Unknown"},
		{"weird", "⚪ Unknown"},
	}
	for _, tt := range tests {
		if got := riskLabel(tr, "en", tt.level); got != tt.want {
			t.Errorf("riskLabel(%q) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	t.Parallel()
	tr := testTranslator(t)

	if got := FormatAge(tr, "en", 7*time.Minute+30*time.Second); got != "signal 7 minutes ago" {
		t.Errorf("FormatAge = %q", got)
	}
	if got := FormatAge(tr, "en", -time.Minute); got != "signal 0 minutes ago" {
		t.Errorf("negative age = %q", got)
	}
}

func TestLinkOrLabel(t *testing.T) {
	t.Parallel()

	if got := linkOrLabel("https://example.com", "Web"); got != `<a href="https://example.com">Web</a>` {
		t.Errorf("linked form = %q", got)
	}
	if got := linkOrLabel("  ", "Web"); got != "Web" {
		t.Errorf("plain form = %q", got)
	}
}

func TestTokenMessage(t *testing.T) {
	t.Parallel()
	tr := testTranslator(t)

	token := domain.TokenSnapshot{
		Symbol:        "foo",
		Name:          "Foo Token",
		ChainID:       "solana",
		PriceChangeH1: fptr(8.2),
		PriceChangeM5: fptr(1.1),
		PriceChange24: fptr(42.9),
		MarketCapKUSD: fptr(1500),
		RiskLevel:     "low",
		LaunchedDays:  3,
		Website:       "https://foo.example",
	}

	msg := tokenMessage(tr, "en", token, "")

	for _, want := range []string{
		"$FOO",
		"Solana",
		"8%",
		"43%",
		"1,500",
		"🟢 Low",
		`<a href="https://foo.example">Web</a>`,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	// Absent socials stay as plain labels.
	if !strings.Contains(msg, "X   |") {
		t.Errorf("expected plain X label:\n%s", msg)
	}
	if strings.Contains(msg, "signal_on") {
		t.Errorf("raw key leaked into message:\n%s", msg)
	}
}

func TestTokenMessageSignalChannel(t *testing.T) {
	t.Parallel()
	tr := testTranslator(t)

	msg := tokenMessage(tr, "en", domain.TokenSnapshot{Symbol: "bar", ChainID: "bsc"}, `<a href="https://t.me/x">Signals</a>`)
	if !strings.Contains(msg, "Signals") {
		t.Errorf("signal channel line missing:\n%s", msg)
	}
}
