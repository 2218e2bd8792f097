// Package markettype maps free-form ticker symbols onto the adapter family
// that can quote them. Classification is purely lexical: no network calls,
// no per-symbol state.
package markettype

import "strings"

// Type is one of the three asset classes the monitor can serve.
type Type string

const (
	Crypto Type = "crypto"
	Forex  Type = "forex"
	Stock  Type = "stock"
)

// currencyCodes holds the major ISO currency codes used to recognize
// 6-letter forex pairs like EURUSD or GBPJPY.
var currencyCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CHF": true,
	"AUD": true, "NZD": true, "CAD": true, "SEK": true, "NOK": true,
	"DKK": true, "SGD": true, "HKD": true, "CNY": true, "CNH": true,
	"MXN": true, "ZAR": true, "TRY": true, "PLN": true, "HUF": true,
	"CZK": true, "ILS": true, "KRW": true, "INR": true, "BRL": true,
	"RUB": true, "THB": true,
}

// stockSymbols is a curated set of well-known equity tickers. Anything not
// listed here falls through to crypto, which tolerates arbitrary symbols.
var stockSymbols = map[string]bool{
	"AAPL": true, "MSFT": true, "GOOG": true, "GOOGL": true, "AMZN": true,
	"META": true, "TSLA": true, "NVDA": true, "AMD": true, "INTC": true,
	"NFLX": true, "DIS": true, "BA": true, "JPM": true, "GS": true,
	"BAC": true, "WFC": true, "V": true, "MA": true, "PYPL": true,
	"KO": true, "PEP": true, "MCD": true, "SBUX": true, "NKE": true,
	"WMT": true, "COST": true, "XOM": true, "CVX": true, "PFE": true,
	"JNJ": true, "MRNA": true, "UNH": true, "ABNB": true, "UBER": true,
	"LYFT": true, "COIN": true, "HOOD": true, "MSTR": true, "PLTR": true,
	"SHOP": true, "SQ": true, "SPOT": true, "SNAP": true, "TSM": true,
	"ORCL": true, "IBM": true, "CRM": true, "ADBE": true, "QCOM": true,
	"F": true, "GM": true, "T": true, "VZ": true, "GME": true, "AMC": true,
	"SPY": true, "QQQ": true, "DIA": true, "IWM": true, "VTI": true,
	"BRKB": true, "BRK.B": true,
}

// Detect classifies a symbol. First match wins:
//  1. two concatenated ISO currency codes -> forex
//  2. curated equity ticker set -> stock
//  3. everything else -> crypto (the least constrained format)
func Detect(symbol string) Type {
	s := strings.ToUpper(strings.TrimSpace(symbol))

	if len(s) == 6 && currencyCodes[s[:3]] && currencyCodes[s[3:]] {
		return Forex
	}
	if stockSymbols[s] {
		return Stock
	}
	return Crypto
}
