package price

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// DexSource quotes tokens by contract address from a DexScreener-compatible
// aggregator. The same base asset trades in many pools, so the adapter
// picks the pool with the highest USD liquidity.
type DexSource struct {
	baseURL string
	client  *http.Client
}

func NewDexSource(baseURL string, timeout time.Duration) *DexSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &DexSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *DexSource) Name() string {
	return "dex"
}

type dexPair struct {
	DexID     string `json:"dexId"`
	PriceUsd  string `json:"priceUsd"`
	Liquidity struct {
		Usd float64 `json:"usd"`
	} `json:"liquidity"`
	PriceChange struct {
		H24 *float64 `json:"h24"`
	} `json:"priceChange"`
}

type dexResponse struct {
	Pairs []dexPair `json:"pairs"`
}

// CurrentPrice resolves a token address to its deepest pool's USD price.
func (s *DexSource) CurrentPrice(ctx context.Context, symbol string) (Quote, error) {
	address := strings.TrimSpace(symbol)
	if !IsContractAddress(address) {
		return Quote{}, newPermanent(s.Name(), address, errors.New("not a token contract address"))
	}

	endpoint := fmt.Sprintf("%s/latest/dex/tokens/%s", s.baseURL, address)
	var resp dexResponse
	if err := getJSON(ctx, s.client, s.Name(), address, endpoint, &resp); err != nil {
		return Quote{}, err
	}

	if len(resp.Pairs) == 0 {
		return Quote{}, newPermanent(s.Name(), address, errors.New("no pools found for token"))
	}
	log.Debugf("%s: %d pools for %s: %s", s.Name(), len(resp.Pairs), address, spew.Sdump(resp.Pairs))

	best := resp.Pairs[0]
	for _, p := range resp.Pairs[1:] {
		if p.Liquidity.Usd > best.Liquidity.Usd {
			best = p
		}
	}

	value, err := decimal.NewFromString(best.PriceUsd)
	if err != nil || value.IsZero() {
		return Quote{}, newPermanent(s.Name(), address, errors.Errorf("pool %s has no usable price (priceUsd=%q)", best.DexID, best.PriceUsd))
	}

	quote := Quote{Price: value}
	if best.PriceChange.H24 != nil {
		change := decimal.NewFromFloat(*best.PriceChange.H24)
		quote.Change24h = &change
	}
	return quote, nil
}
