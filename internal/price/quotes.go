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
)

// QuoteSource serves forex pairs and equities from a Twelve Data-compatible
// /quote endpoint. One provider family covers both market types.
type QuoteSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewQuoteSource(baseURL, apiKey string, timeout time.Duration) *QuoteSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &QuoteSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *QuoteSource) Name() string {
	return "quotes"
}

// providerQuote doubles as the success and the error payload; the provider
// answers HTTP 200 either way and flags failures through status/code.
type providerQuote struct {
	Symbol        string `json:"symbol"`
	Close         string `json:"close"`
	PercentChange string `json:"percent_change"`
	Status        string `json:"status"`
	Code          int    `json:"code"`
	Message       string `json:"message"`
}

// CurrentPrice fetches the latest quote for a forex pair or equity ticker.
func (s *QuoteSource) CurrentPrice(ctx context.Context, symbol string) (Quote, error) {
	ticker := strings.ToUpper(strings.TrimSpace(symbol))
	endpoint := fmt.Sprintf("%s/quote?symbol=%s&apikey=%s", s.baseURL, url.QueryEscape(ticker), url.QueryEscape(s.apiKey))

	var resp providerQuote
	if err := getJSON(ctx, s.client, s.Name(), ticker, endpoint, &resp); err != nil {
		return Quote{}, err
	}

	if resp.Status == "error" {
		err := errors.Errorf("provider error %d: %s", resp.Code, resp.Message)
		if resp.Code == http.StatusTooManyRequests || resp.Code >= 500 {
			return Quote{}, newTransient(s.Name(), ticker, err)
		}
		return Quote{}, newPermanent(s.Name(), ticker, err)
	}

	value, err := decimal.NewFromString(resp.Close)
	if err != nil || value.IsZero() {
		return Quote{}, newPermanent(s.Name(), ticker, errors.Errorf("no usable price in quote (close=%q)", resp.Close))
	}

	quote := Quote{Price: value}
	if change, err := decimal.NewFromString(resp.PercentChange); err == nil {
		quote.Change24h = &change
	}
	return quote, nil
}
