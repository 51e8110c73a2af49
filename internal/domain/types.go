package domain

import (
	"strings"
	"time"
)

// TokenSnapshot is one observed row of market data for a DEX token.
// Rows are immutable after insert except SentTime, which is set exactly
// once when the snapshot has been through a delivery pass.
type TokenSnapshot struct {
	ID      int64
	Address string
	Symbol  string
	Name    string
	ChainID string
	GroupID string
	Rank    int

	PriceUSD      float64
	PriceChangeM5 *float64
	PriceChangeH1 *float64
	PriceChange24 *float64

	MarketCapKUSD *float64
	LiquidityKUSD *float64
	Volume24KUSD  *float64

	LPLockedPercent *float64
	Top10Percent    *float64
	RiskLevel       string
	LaunchedDays    float64

	Website     string
	Twitter     string
	Telegram    string
	DexScreener string
	PairAddress string

	InsertTime time.Time
	SentTime   *time.Time
}

// Recipient is a chat the bot delivers signals to, as read from the store
// at the start of a cycle.
type Recipient struct {
	ID         int64
	TelegramID int64
	Language   string
	// SubscribedChains holds lowercase chain ids. Empty means the
	// recipient matches nothing.
	SubscribedChains []string
}

// SubscribedTo reports whether the recipient subscribed to the given chain.
func (r Recipient) SubscribedTo(chainID string) bool {
	chainID = strings.ToLower(chainID)
	for _, c := range r.SubscribedChains {
		if c == chainID {
			return true
		}
	}
	return false
}

// PricePoint is one sample of an external price series. Unix is aligned
// to the provider's fixed sampling grid.
type PricePoint struct {
	Unix  int64
	Price float64
}

// AlertMarker is a historical signal plotted on top of a price series.
// Unix is rounded down to the series grid before matching.
type AlertMarker struct {
	Unix  int64
	Price float64
}

// NotificationContent is the prepared payload for one token in one
// language, shared by every recipient subscribed to the token's chain.
type NotificationContent struct {
	Token     TokenSnapshot
	Message   string
	Chart     []byte
	ActionURL string
}

// Risk levels as stored in token snapshots.
const (
	RiskLow     = "low"
	RiskMedium  = "medium"
	RiskHigh    = "high"
	RiskUnknown = "unknown"
)
