package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeCurrentPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"50123.45","priceChangePercent":"1.25"}`))
	}))
	defer srv.Close()

	s := NewExchangeSource(srv.URL, srv.URL, time.Second)
	quote, err := s.CurrentPrice(context.Background(), "btcusdt")
	require.NoError(t, err)
	assert.Equal(t, "50123.45", quote.Price.String())
	require.NotNil(t, quote.Change24h)
	assert.Equal(t, "1.25", quote.Change24h.String())
}

func TestExchangeNeverReturnsZeroPrice(t *testing.T) {
	payloads := []string{
		`{"symbol":"BTCUSDT","lastPrice":"0.00000000","priceChangePercent":"0"}`,
		`{"symbol":"BTCUSDT","lastPrice":"","priceChangePercent":""}`,
		`{"symbol":"BTCUSDT","lastPrice":"not-a-number"}`,
		`{"symbol":"BTCUSDT"}`,
	}

	for _, payload := range payloads {
		payload := payload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(payload))
		}))

		s := NewExchangeSource(srv.URL, srv.URL, time.Second)
		_, err := s.CurrentPrice(context.Background(), "BTCUSDT")
		assert.Error(t, err, "payload %s must not produce a quote", payload)
		assert.False(t, IsTransient(err))
		srv.Close()
	}
}

func TestExchangeRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"symbol":"ETHUSDT","lastPrice":"3000.10","priceChangePercent":"-0.5"}`))
	}))
	defer srv.Close()

	s := NewExchangeSource(srv.URL, srv.URL, time.Second)
	quote, err := s.CurrentPrice(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, "3000.1", quote.Price.String())
	assert.Equal(t, int32(2), calls.Load())
}

func TestExchangeDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewExchangeSource(srv.URL, srv.URL, time.Second)
	_, err := s.CurrentPrice(context.Background(), "NOSUCHPAIR")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFundingInfoUnavailableNeverZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fapi/v1/premiumIndex":
			// funding rate field missing entirely
			w.Write([]byte(`{"markPrice":"50000.00"}`))
		case "/fapi/v1/openInterest":
			w.Write([]byte(`{"openInterest":"12345.678"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := NewExchangeSource(srv.URL, srv.URL, time.Second)
	_, err := s.FundingInfo(context.Background(), "BTCUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "funding rate unavailable")
}

func TestFundingInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fapi/v1/premiumIndex":
			w.Write([]byte(`{"markPrice":"50000.00","lastFundingRate":"0.00010000"}`))
		case "/fapi/v1/openInterest":
			w.Write([]byte(`{"openInterest":"12345.678"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := NewExchangeSource(srv.URL, srv.URL, time.Second)
	info, err := s.FundingInfo(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "0.0001", info.FundingRate.String())
	assert.Equal(t, "12345.678", info.OpenInterest.String())
}
