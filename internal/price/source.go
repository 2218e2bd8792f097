// Package price contains one adapter per upstream market-data provider.
// Every adapter exposes the same contract: the current price plus the 24h
// change for a symbol, or a typed FetchError. Rate limiting, retries and
// response validation stay inside the adapter; callers only pick which
// family serves a symbol.
package price

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Quote is a normalized current price. Change24h is nil when the provider
// does not report it; it is never silently zeroed.
type Quote struct {
	Price     decimal.Decimal
	Change24h *decimal.Decimal
}

// Source is the uniform adapter contract.
type Source interface {
	Name() string
	CurrentPrice(ctx context.Context, symbol string) (Quote, error)
}

// FundingInfo is a derivatives snapshot for a perpetual pair. Fields absent
// upstream propagate as fetch errors, never as zeroes.
type FundingInfo struct {
	FundingRate  decimal.Decimal
	OpenInterest decimal.Decimal
}

var (
	contractAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

	// quote currencies used in exchange pair notation
	pairSuffixes = []string{"USDT", "USDC", "BUSD", "FDUSD", "TUSD", "USD", "BTC", "ETH", "BNB"}
)

// IsContractAddress reports whether the symbol is an EVM token address,
// which routes to the DEX aggregator.
func IsContractAddress(symbol string) bool {
	return contractAddressRe.MatchString(strings.TrimSpace(symbol))
}

// LooksLikePair reports whether a crypto symbol uses exchange pair notation
// (BTCUSDT, ETHBTC) rather than a bare asset symbol (BTC).
func LooksLikePair(symbol string) bool {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, suffix := range pairSuffixes {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			return true
		}
	}
	return false
}
