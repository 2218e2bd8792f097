package markettype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		symbol string
		want   Type
	}{
		{"EURUSD", Forex},
		{"GBPJPY", Forex},
		{"AUDCAD", Forex},
		{"usdchf", Forex},
		{" EURUSD ", Forex},

		{"AAPL", Stock},
		{"TSLA", Stock},
		{"tsla", Stock},
		{"SPY", Stock},

		{"BTC", Crypto},
		{"ETH", Crypto},
		{"BTCUSDT", Crypto},
		{"ETHBTC", Crypto},
		{"SHIB", Crypto},
		{"0x6b175474e89094c44da98b954eedeac495271d0f", Crypto},
		{"PEPE", Crypto},
		// 3-letter currency code alone is not a pair
		{"EUR", Crypto},
		// unknown 6-letter string where only one half is a currency
		{"USDXYZ", Crypto},
		{"", Crypto},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.symbol))
		})
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	symbols := []string{"EURUSD", "AAPL", "BTC", "BTCUSDT", "random-junk"}
	for _, s := range symbols {
		first := Detect(s)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Detect(s), "Detect(%q) changed between calls", s)
		}
	}
}
