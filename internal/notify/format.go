package notify

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"dexsignal/internal/domain"
	"dexsignal/internal/i18n"
)

// FormatPercent renders a percentage metric, rounding to whole percent.
// Ratios (0..1 scale) pass multiply=true. Nil and zero values render as
// the localized placeholder: zero readings come from the upstream
// scraper when the real value is unknown.
func FormatPercent(v *float64, multiply bool, na string) string {
	if v == nil || *v == 0 || math.IsNaN(*v) {
		return na
	}
	val := *v
	if multiply {
		val *= 100
	}
	return strconv.FormatInt(int64(math.Round(val)), 10) + "%"
}

// FormatNumber renders a metric rounded to an integer with thousands
// separators, or the placeholder when absent.
func FormatNumber(v *float64, na string) string {
	if v == nil || math.IsNaN(*v) {
		return na
	}
	return groupThousands(int64(math.Round(*v)))
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) > 3 {
		var b strings.Builder
		lead := len(s) % 3
		if lead > 0 {
			b.WriteString(s[:lead])
		}
		for i := lead; i < len(s); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}

// FormatAge renders how long ago a snapshot was recorded, in whole
// minutes.
func FormatAge(tr *i18n.Translator, lang string, age time.Duration) string {
	m := int(age.Minutes())
	if m < 0 {
		m = 0
	}
	return fmt.Sprintf("%s %d %s", tr.T(lang, "signal"), m, tr.T(lang, "minutes_ago"))
}

// riskLabel returns the colored, localized risk tier for a snapshot.
func riskLabel(tr *i18n.Translator, lang, level string) string {
	switch strings.ToLower(level) {
	case domain.RiskLow:
		return "🟢 " + tr.T(lang, "low")
	case domain.RiskMedium:
		return "🟡 " + tr.T(lang, "medium")
	case domain.RiskHigh:
		return "🔴 " + tr.T(lang, "high")
	default:
		return "⚪ " + tr.T(lang, "unknown")
	}
}

func capitalize(s string) string {
	if s == "" {
		return "N/A"
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// linkOrLabel renders an HTML anchor when the URL is present and the
// plain label otherwise, so the row keeps its shape either way.
func linkOrLabel(url, label string) string {
	if strings.TrimSpace(url) == "" {
		return label
	}
	return fmt.Sprintf(`<a href="%s">%s</a>`, url, label)
}

func tokenLinks(t domain.TokenSnapshot) string {
	return fmt.Sprintf(" %s   |   %s   |   %s   |   %s",
		linkOrLabel(t.Website, "Web"),
		linkOrLabel(t.Twitter, "X"),
		linkOrLabel(t.Telegram, "TG"),
		linkOrLabel(t.DexScreener, "Screener"),
	)
}

// tokenMessage builds the localized HTML caption for one token.
func tokenMessage(tr *i18n.Translator, lang string, t domain.TokenSnapshot, signalChannel string) string {
	na := tr.T(lang, "not_available")
	launched := t.LaunchedDays

	var b strings.Builder
	fmt.Fprintf(&b, "<b>$%s %s %s %s %s %s %s! 🔥</b>\n",
		strings.ToUpper(t.Symbol), tr.T(lang, "on"), capitalize(t.ChainID),
		tr.T(lang, "up"), FormatPercent(t.PriceChangeH1, false, na),
		tr.T(lang, "in"), tr.T(lang, "1H"))
	if signalChannel != "" {
		fmt.Fprintf(&b, "%s %s\n", tr.T(lang, "signal_on"), signalChannel)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "📈 %s: %s | %s: %s | %s: %s\n\n",
		tr.T(lang, "5m"), FormatPercent(t.PriceChangeM5, false, na),
		tr.T(lang, "1h"), FormatPercent(t.PriceChangeH1, false, na),
		tr.T(lang, "24h"), FormatPercent(t.PriceChange24, false, na))

	fmt.Fprintf(&b, "💰 %s: %s (%s)\n", tr.T(lang, "fdv"), FormatNumber(t.MarketCapKUSD, na), tr.T(lang, "thousand_usd"))
	fmt.Fprintf(&b, "💦 %s: %s (%s)\n", tr.T(lang, "liquidity"), FormatNumber(t.LiquidityKUSD, na), tr.T(lang, "thousand_usd"))
	fmt.Fprintf(&b, "📊 %s: %s (%s)\n\n", tr.T(lang, "volume24h"), FormatNumber(t.Volume24KUSD, na), tr.T(lang, "thousand_usd"))

	fmt.Fprintf(&b, "🔥 %s: %s | %s: %s\n",
		tr.T(lang, "burn"), FormatPercent(t.LPLockedPercent, true, na),
		tr.T(lang, "top10"), FormatPercent(t.Top10Percent, true, na))
	fmt.Fprintf(&b, "%s %s | ⏳ %s%s\n\n",
		riskLabel(tr, lang, t.RiskLevel), tr.T(lang, "smart_contract_risk"),
		FormatNumber(&launched, na), tr.T(lang, "days"))

	b.WriteString(tokenLinks(t))
	return b.String()
}
