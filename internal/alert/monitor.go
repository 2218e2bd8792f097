package alert

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"marketwatch-telegram-bot/internal/database"
	"marketwatch-telegram-bot/internal/marketcache"
	"marketwatch-telegram-bot/internal/markettype"
	"marketwatch-telegram-bot/internal/price"
	"marketwatch-telegram-bot/internal/types"
	"marketwatch-telegram-bot/lib/helpers"
	"marketwatch-telegram-bot/lib/translation"
)

// Notifier delivers a rendered alert message to a chat.
type Notifier interface {
	Send(chatID int64, text string) error
}

// FundingProvider supplies the optional derivatives snapshot used to enrich
// crypto pair notifications.
type FundingProvider interface {
	FundingInfo(ctx context.Context, symbol string) (price.FundingInfo, error)
}

// Sources groups the adapter families the monitor dispatches to.
// Funding may be nil; notifications then go out without derivatives data.
type Sources struct {
	Exchange price.Source
	Dex      price.Source
	Paprika  price.Source
	Quotes   price.Source
	Funding  FundingProvider
}

type Config struct {
	Interval     time.Duration
	PriceTTL     time.Duration
	FundingTTL   time.Duration
	Retention    time.Duration
	SystemChatID int64
}

// Monitor runs the alert check loop: distinct alerted symbols, one cached
// price fetch per symbol, evaluation, conditional trigger, notification.
type Monitor struct {
	cfg      Config
	cache    *marketcache.Cache
	sources  Sources
	notifier Notifier
	metrics  *Metrics

	// passMu keeps passes from overlapping; Cleanup deliberately does not
	// take it and may run alongside a pass.
	passMu sync.Mutex
}

func NewMonitor(cfg Config, cache *marketcache.Cache, sources Sources, notifier Notifier, metrics *Metrics) *Monitor {
	return &Monitor{
		cfg:      cfg,
		cache:    cache,
		sources:  sources,
		notifier: notifier,
		metrics:  metrics,
	}
}

// RunOnce performs a single monitor pass. One symbol's upstream failure
// never aborts the pass for the others; a persistence failure does, and the
// next scheduled pass retries from consistent state.
func (m *Monitor) RunOnce(ctx context.Context) error {
	m.passMu.Lock()
	defer m.passMu.Unlock()

	log.Debug("🔄 Checking alerts...")

	symbols, err := database.DistinctActiveAlertSymbols()
	if err != nil {
		m.metrics.incPassFailure()
		return errors.Wrap(err, "failed to enumerate alerted symbols")
	}

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}

		marketType := markettype.Detect(symbol)
		current, err := m.fetchPrice(ctx, symbol, marketType)
		if err != nil {
			log.Warnf("⚠️ No price data for %s (%s): %v", symbol, marketType, err)
			continue
		}

		if err := m.checkSymbol(ctx, current); err != nil {
			m.metrics.incPassFailure()
			return err
		}
	}

	m.metrics.incPass()
	log.Debug("✅ Alert check completed.")
	return nil
}

// checkSymbol evaluates and fires every active alert for one symbol.
func (m *Monitor) checkSymbol(ctx context.Context, current types.NormalizedPrice) error {
	alerts, err := database.GetActiveAlertsForSymbol(current.Symbol)
	if err != nil {
		return errors.Wrapf(err, "failed to load alerts for %s", current.Symbol)
	}

	for _, a := range alerts {
		log.Debugf("🔍 Checking alert ID: %d | Symbol: %s | Condition: %s %s | Current: %s",
			a.ID, a.Symbol, a.Condition, a.Target.String(), current.Price.String())

		if Evaluate(a, current.Price) != NewlyTriggered {
			continue
		}

		message := RenderMessage(a, current)
		if current.MarketType == string(markettype.Crypto) && price.LooksLikePair(a.Symbol) {
			message += m.fundingLine(ctx, a.Symbol)
		}

		// repeat alerts stay active and wait for an external re-arm;
		// one-shot alerts deactivate on fire
		fired, err := database.MarkAlertTriggered(a.ID, message, !a.Repeat)
		if err != nil {
			return errors.Wrapf(err, "failed to persist trigger for alert %d", a.ID)
		}
		if !fired {
			log.Debugf("alert %d was already triggered elsewhere, skipping notification", a.ID)
			continue
		}
		m.metrics.incTriggered(current.MarketType)

		// the trigger is committed; a delivery failure must not resurrect it
		chatID := m.cfg.SystemChatID
		if a.ChatID.Valid {
			chatID = a.ChatID.Int64
		}
		if err := m.notifier.Send(chatID, message); err != nil {
			m.metrics.incNotified(false)
			log.Errorf("❌ Failed to send alert notification for alert %d: %v", a.ID, err)
		} else {
			m.metrics.incNotified(true)
			log.Debugf("✅ Alert notification sent to chat ID: %d", chatID)
		}
	}
	return nil
}

// fetchPrice looks the symbol up through the cache, dispatching to the
// adapter family on a miss.
func (m *Monitor) fetchPrice(ctx context.Context, symbol string, marketType markettype.Type) (types.NormalizedPrice, error) {
	key := fmt.Sprintf("price:%s:%s", marketType, symbol)

	data, err := m.cache.GetOrCompute(key, "price", m.cfg.PriceTTL, func() (map[string]string, error) {
		source := m.sourceFor(symbol, marketType)
		if source == nil {
			return nil, errors.Errorf("no price source configured for %s (%s)", symbol, marketType)
		}

		m.metrics.incFetch()
		quote, err := source.CurrentPrice(ctx, symbol)
		if err != nil {
			m.metrics.incFetchFailure(source.Name())
			return nil, err
		}

		payload := map[string]string{"price": quote.Price.String()}
		if quote.Change24h != nil {
			payload["change_24h"] = quote.Change24h.String()
		}
		return payload, nil
	})
	if err != nil {
		return types.NormalizedPrice{}, err
	}

	value, err := decimal.NewFromString(data["price"])
	if err != nil || value.IsZero() {
		return types.NormalizedPrice{}, errors.Errorf("cache entry for %s holds no usable price", symbol)
	}

	current := types.NormalizedPrice{
		Symbol:     symbol,
		Price:      value,
		MarketType: string(marketType),
		FetchedAt:  time.Now(),
	}
	if raw, ok := data["change_24h"]; ok {
		if change, err := decimal.NewFromString(raw); err == nil {
			current.Change24h = &change
		}
	}
	return current, nil
}

// sourceFor picks the adapter family for a symbol. Contract addresses go to
// the DEX aggregator, exchange pair notation to the spot exchange, bare
// crypto symbols to the aggregator API, everything else to the quote feed.
func (m *Monitor) sourceFor(symbol string, marketType markettype.Type) price.Source {
	switch marketType {
	case markettype.Forex, markettype.Stock:
		return m.sources.Quotes
	default:
		switch {
		case price.IsContractAddress(symbol):
			return m.sources.Dex
		case price.LooksLikePair(symbol):
			return m.sources.Exchange
		default:
			return m.sources.Paprika
		}
	}
}

// fundingLine renders a best-effort derivatives suffix for a crypto pair.
// Any failure returns an empty string; funding data never blocks an alert.
func (m *Monitor) fundingLine(ctx context.Context, symbol string) string {
	if m.sources.Funding == nil {
		return ""
	}

	key := "funding:" + strings.ToUpper(symbol)
	data, err := m.cache.GetOrCompute(key, "funding", m.cfg.FundingTTL, func() (map[string]string, error) {
		info, err := m.sources.Funding.FundingInfo(ctx, symbol)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			"funding_rate":  info.FundingRate.String(),
			"open_interest": info.OpenInterest.String(),
		}, nil
	})
	if err != nil {
		log.Debugf("funding data unavailable for %s: %v", symbol, err)
		return ""
	}

	rate, err := decimal.NewFromString(data["funding_rate"])
	if err != nil {
		return ""
	}
	interest, err := decimal.NewFromString(data["open_interest"])
	if err != nil {
		return ""
	}

	return fmt.Sprintf("\n%s: `%s%%` \\| %s: `%s`",
		helpers.EscapeMarkdownV2(translation.Translate("Funding Rate")),
		rate.Mul(decimal.NewFromInt(100)).StringFixed(4),
		helpers.EscapeMarkdownV2(translation.Translate("Open Interest")),
		humanize.CommafWithDigits(interest.InexactFloat64(), 0),
	)
}

// Start runs the monitor until ctx is cancelled. The first pass happens
// immediately; later passes tick at the configured interval. Shutdown is
// honored within one tick.
func (m *Monitor) Start(ctx context.Context) {
	log.Infof("🚀 Alert monitor started (interval: %s)", m.cfg.Interval)

	if err := m.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("❌ Alert pass failed: %v", err)
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("🛑 Alert monitor stopped.")
			return
		case <-ticker.C:
			if err := m.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("❌ Alert pass failed: %v", err)
			}
		}
	}
}

// Cleanup removes fired one-shot alerts past the retention window and
// sweeps expired cache entries. Safe to call while a pass is in flight.
func (m *Monitor) Cleanup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	removedAlerts, err := database.DeleteStaleTriggeredAlerts(m.cfg.Retention)
	if err != nil {
		return errors.Wrap(err, "failed to delete stale alerts")
	}

	removedEntries, err := m.cache.ClearExpired()
	if err != nil {
		return errors.Wrap(err, "failed to clear expired cache entries")
	}

	if removedAlerts > 0 || removedEntries > 0 {
		log.Infof("🧹 Cleanup removed %d stale alerts (triggered before %s) and %d expired cache entries",
			removedAlerts, humanize.Time(time.Now().Add(-m.cfg.Retention)), removedEntries)
	}
	return nil
}
