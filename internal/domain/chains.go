package domain

import "strings"

// chainNumericIDs maps chain names to the numeric ids the trading miniapp
// expects in its deep links.
var chainNumericIDs = map[string]string{
	"ethereum":  "1",
	"optimism":  "10",
	"cronos":    "25",
	"bsc":       "56",
	"gnosis":    "100",
	"polygon":   "137",
	"fantom":    "250",
	"arbitrum":  "42161",
	"avalanche": "43114",
	"linea":     "59144",
	"base":      "8453",
	"scroll":    "534352",
	"mantle":    "5000",
	"blast":     "81457",
	"merlin":    "4200",
	"tron":      "tron",
	"solana":    "900",
}

// ChainNumericID returns the miniapp chain id for a chain name, or
// "default_chain_id" when the chain is not mapped.
func ChainNumericID(chain string) string {
	if id, ok := chainNumericIDs[strings.ToLower(chain)]; ok {
		return id
	}
	return "default_chain_id"
}
