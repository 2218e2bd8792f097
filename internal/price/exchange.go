package price

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ExchangeSource quotes crypto pairs (BTCUSDT) from a Binance-compatible
// spot REST API, with derivatives data from the matching futures API.
type ExchangeSource struct {
	baseURL    string
	futuresURL string
	client     *http.Client
}

func NewExchangeSource(baseURL, futuresURL string, timeout time.Duration) *ExchangeSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ExchangeSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		futuresURL: strings.TrimRight(futuresURL, "/"),
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *ExchangeSource) Name() string {
	return "exchange"
}

type exchangeTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
}

// CurrentPrice fetches the 24h ticker for a pair symbol.
func (s *ExchangeSource) CurrentPrice(ctx context.Context, symbol string) (Quote, error) {
	pair := strings.ToUpper(strings.TrimSpace(symbol))
	endpoint := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", s.baseURL, url.QueryEscape(pair))

	var ticker exchangeTicker
	if err := getJSON(ctx, s.client, s.Name(), pair, endpoint, &ticker); err != nil {
		return Quote{}, err
	}

	value, err := decimal.NewFromString(ticker.LastPrice)
	if err != nil || value.IsZero() {
		return Quote{}, newPermanent(s.Name(), pair, errors.Errorf("no usable price in ticker (lastPrice=%q)", ticker.LastPrice))
	}

	quote := Quote{Price: value}
	if change, err := decimal.NewFromString(ticker.PriceChangePercent); err == nil {
		quote.Change24h = &change
	} else {
		log.Debugf("%s: no 24h change for %s: %v", s.Name(), pair, err)
	}
	return quote, nil
}

type premiumIndex struct {
	MarkPrice       string `json:"markPrice"`
	LastFundingRate string `json:"lastFundingRate"`
}

type openInterest struct {
	OpenInterest string `json:"openInterest"`
}

// FundingInfo fetches the funding rate and open interest for a perpetual
// pair. A field the upstream omits or mangles is an error, never a zero.
func (s *ExchangeSource) FundingInfo(ctx context.Context, symbol string) (FundingInfo, error) {
	pair := strings.ToUpper(strings.TrimSpace(symbol))

	var premium premiumIndex
	endpoint := fmt.Sprintf("%s/fapi/v1/premiumIndex?symbol=%s", s.futuresURL, url.QueryEscape(pair))
	if err := getJSON(ctx, s.client, s.Name(), pair, endpoint, &premium); err != nil {
		return FundingInfo{}, err
	}

	rate, err := decimal.NewFromString(premium.LastFundingRate)
	if err != nil {
		return FundingInfo{}, newPermanent(s.Name(), pair, errors.Errorf("funding rate unavailable (lastFundingRate=%q)", premium.LastFundingRate))
	}

	var oi openInterest
	endpoint = fmt.Sprintf("%s/fapi/v1/openInterest?symbol=%s", s.futuresURL, url.QueryEscape(pair))
	if err := getJSON(ctx, s.client, s.Name(), pair, endpoint, &oi); err != nil {
		return FundingInfo{}, err
	}

	interest, err := decimal.NewFromString(oi.OpenInterest)
	if err != nil {
		return FundingInfo{}, newPermanent(s.Name(), pair, errors.Errorf("open interest unavailable (openInterest=%q)", oi.OpenInterest))
	}

	return FundingInfo{FundingRate: rate, OpenInterest: interest}, nil
}
