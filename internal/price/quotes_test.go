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

func TestQuoteCurrentPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "EURUSD", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(`{"symbol":"EURUSD","close":"1.08420","percent_change":"0.12"}`))
	}))
	defer srv.Close()

	s := NewQuoteSource(srv.URL, "test-key", time.Second)
	quote, err := s.CurrentPrice(context.Background(), "eurusd")
	require.NoError(t, err)
	assert.Equal(t, "1.0842", quote.Price.String())
	require.NotNil(t, quote.Change24h)
	assert.Equal(t, "0.12", quote.Change24h.String())
}

func TestQuoteProviderErrorEnvelope(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		transient bool
	}{
		{"unknown symbol", `{"code":404,"message":"symbol not found","status":"error"}`, false},
		{"rate limited", `{"code":429,"message":"out of API credits","status":"error"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.payload))
			}))
			defer srv.Close()

			s := NewQuoteSource(srv.URL, "k", time.Second)
			_, err := s.CurrentPrice(context.Background(), "XXXYYY")
			require.Error(t, err)
			assert.Equal(t, tt.transient, IsTransient(err))
		})
	}
}

func TestQuoteNeverReturnsZeroPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"AAPL","close":"0.00000"}`))
	}))
	defer srv.Close()

	s := NewQuoteSource(srv.URL, "k", time.Second)
	_, err := s.CurrentPrice(context.Background(), "AAPL")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestLooksLikePair(t *testing.T) {
	assert.True(t, LooksLikePair("BTCUSDT"))
	assert.True(t, LooksLikePair("ethbtc"))
	assert.False(t, LooksLikePair("BTC"))
	assert.False(t, LooksLikePair("USDT"))
	assert.False(t, LooksLikePair("AAPL"))
}

func TestIsContractAddress(t *testing.T) {
	assert.True(t, IsContractAddress(daiAddress))
	assert.False(t, IsContractAddress("0x123"))
	assert.False(t, IsContractAddress("BTC"))
}
