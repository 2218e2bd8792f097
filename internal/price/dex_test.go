package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const daiAddress = "0x6B175474E89094C44Da98b954EedeAC495271d0F"

func TestDexPicksHighestLiquidityPool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[
			{"dexId":"small","priceUsd":"0.97","liquidity":{"usd":15000},"priceChange":{"h24":-0.4}},
			{"dexId":"deep","priceUsd":"1.0002","liquidity":{"usd":8200000},"priceChange":{"h24":0.01}},
			{"dexId":"mid","priceUsd":"0.999","liquidity":{"usd":420000},"priceChange":{"h24":0.02}}
		]}`))
	}))
	defer srv.Close()

	s := NewDexSource(srv.URL, time.Second)
	quote, err := s.CurrentPrice(context.Background(), daiAddress)
	require.NoError(t, err)
	assert.Equal(t, "1.0002", quote.Price.String())
	require.NotNil(t, quote.Change24h)
	assert.Equal(t, "0.01", quote.Change24h.String())
}

func TestDexRejectsZeroOrMalformedPrice(t *testing.T) {
	payloads := []string{
		`{"pairs":[{"dexId":"x","priceUsd":"0","liquidity":{"usd":1000}}]}`,
		`{"pairs":[{"dexId":"x","priceUsd":"","liquidity":{"usd":1000}}]}`,
		`{"pairs":[{"dexId":"x","priceUsd":"n/a","liquidity":{"usd":1000}}]}`,
		`{"pairs":[]}`,
	}

	for _, payload := range payloads {
		payload := payload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(payload))
		}))

		s := NewDexSource(srv.URL, time.Second)
		_, err := s.CurrentPrice(context.Background(), daiAddress)
		assert.Error(t, err, "payload %s must not produce a quote", payload)
		srv.Close()
	}
}

func TestDexRejectsNonAddressSymbols(t *testing.T) {
	s := NewDexSource("http://unused.invalid", time.Second)
	_, err := s.CurrentPrice(context.Background(), "BTC")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}
