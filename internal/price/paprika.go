package price

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/coinpaprika/coinpaprika-api-go-client/v2/coinpaprika"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PaprikaSource quotes bare crypto symbols (BTC, ETH) through the
// CoinPaprika API: a symbol search resolves the coin id, then the ticker
// endpoint supplies the USD quote.
type PaprikaSource struct {
	client *coinpaprika.Client
}

func NewPaprikaSource(apiProKey string, timeout time.Duration) *PaprikaSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	if apiProKey != "" {
		return &PaprikaSource{client: coinpaprika.NewClient(httpClient, coinpaprika.WithAPIKey(apiProKey))}
	}
	return &PaprikaSource{client: coinpaprika.NewClient(httpClient)}
}

func (s *PaprikaSource) Name() string {
	return "coinpaprika"
}

// CurrentPrice resolves a symbol to a coin and returns its USD quote.
// The client carries no context, so cancellation is checked between calls.
func (s *PaprikaSource) CurrentPrice(ctx context.Context, symbol string) (Quote, error) {
	query := strings.TrimSpace(symbol)

	coin, err := s.searchCoin(query)
	if err != nil {
		return Quote{}, err
	}
	if err := ctx.Err(); err != nil {
		return Quote{}, newTransient(s.Name(), query, err)
	}

	tickerOpts := &coinpaprika.TickersOptions{Quotes: "USD"}
	ticker, err := s.client.Tickers.GetByID(*coin.ID, tickerOpts)
	if err != nil {
		return Quote{}, newTransient(s.Name(), query, errors.Wrap(err, "ticker fetch failed"))
	}

	usd, ok := ticker.Quotes["USD"]
	if !ok || usd.Price == nil || *usd.Price == 0 {
		return Quote{}, newPermanent(s.Name(), query, errors.Errorf("coin %s is not actively traded", *coin.ID))
	}

	quote := Quote{Price: decimal.NewFromFloat(*usd.Price)}
	if usd.PercentChange24h != nil {
		change := decimal.NewFromFloat(*usd.PercentChange24h)
		quote.Change24h = &change
	}
	return quote, nil
}

// searchCoin resolves a coin id, preferring an exact symbol match and
// falling back to a name search.
func (s *PaprikaSource) searchCoin(query string) (*coinpaprika.Coin, error) {
	searchOpts := &coinpaprika.SearchOptions{
		Query:      query,
		Categories: "currencies",
		Modifier:   "symbol_search",
	}
	result, err := s.client.Search.Search(searchOpts)
	if err != nil || len(result.Currencies) == 0 {
		log.Debugf("No results for symbol search, trying name search for '%s'", query)
		searchOpts = &coinpaprika.SearchOptions{Query: query, Categories: "currencies"}
		result, err = s.client.Search.Search(searchOpts)
		if err != nil {
			return nil, newTransient(s.Name(), query, errors.Wrap(err, "search failed"))
		}
		if len(result.Currencies) == 0 {
			return nil, newPermanent(s.Name(), query, errors.Errorf("invalid coin name, ticker, or symbol: %s", query))
		}
	}

	coin := result.Currencies[0]
	if coin.ID == nil {
		return nil, newPermanent(s.Name(), query, errors.New("search result has no coin id"))
	}
	return coin, nil
}
