package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"

	"marketwatch-telegram-bot/config"
	"marketwatch-telegram-bot/internal/alert"
	"marketwatch-telegram-bot/internal/database"
	"marketwatch-telegram-bot/internal/marketcache"
	"marketwatch-telegram-bot/internal/price"
	"marketwatch-telegram-bot/internal/telegram"
	"marketwatch-telegram-bot/lib/translation"
)

const (
	adapterTimeout      = 10 * time.Second
	cleanupInterval     = time.Hour
	metricsSaveInterval = 5 * time.Minute
	shutdownGrace       = 30 * time.Second
)

func init() {
	config.InitConfig()
	setupLogging()
}

func main() {
	runOnce := flag.Bool("once", false, "run a single monitor pass and exit")
	cleanupOnly := flag.Bool("cleanup", false, "run stale-alert and cache cleanup, then exit")
	intervalFlag := flag.Int("interval", 0, "seconds between passes (overrides CHECK_INTERVAL_SECONDS)")
	flag.Parse()

	translation.Configure("locales", strings.ToLower(config.GetString("lang")))

	if err := database.InitDB(config.GetString("database_path")); err != nil {
		log.Errorf("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	defer database.CloseDB()

	interval := time.Duration(config.GetInt("check_interval_seconds")) * time.Second
	if *intervalFlag > 0 {
		interval = time.Duration(*intervalFlag) * time.Second
	}

	metrics := alert.NewMetrics()
	loadMonitorMetrics(metrics)

	monitor := buildMonitor(interval, *cleanupOnly, metrics)

	switch {
	case *cleanupOnly:
		if err := monitor.Cleanup(context.Background()); err != nil {
			log.Errorf("Cleanup failed: %v", err)
			os.Exit(1)
		}
	case *runOnce:
		if err := monitor.RunOnce(context.Background()); err != nil {
			log.Errorf("Monitor pass failed: %v", err)
			os.Exit(1)
		}
		saveMonitorMetrics(metrics)
	default:
		runContinuous(monitor, metrics)
	}
}

func buildMonitor(interval time.Duration, skipNotifier bool, metrics *alert.Metrics) *alert.Monitor {
	exchange := price.NewExchangeSource(
		config.GetString("exchange_api_url"),
		config.GetString("futures_api_url"),
		adapterTimeout,
	)

	sources := alert.Sources{
		Exchange: exchange,
		Dex:      price.NewDexSource(config.GetString("dex_api_url"), adapterTimeout),
		Paprika:  price.NewPaprikaSource(config.GetString("paprika_api_pro_key"), adapterTimeout),
		Quotes: price.NewQuoteSource(
			config.GetString("quotes_api_url"),
			config.GetString("quotes_api_key"),
			adapterTimeout,
		),
		Funding: exchange,
	}

	cfg := alert.Config{
		Interval:     interval,
		PriceTTL:     time.Duration(config.GetInt("price_cache_ttl_seconds")) * time.Second,
		FundingTTL:   time.Duration(config.GetInt("funding_cache_ttl_seconds")) * time.Second,
		Retention:    config.GetDuration("alert_retention"),
		SystemChatID: config.GetInt64("system_channel_id"),
	}

	var notifier alert.Notifier
	if skipNotifier {
		notifier = noopNotifier{}
	} else {
		bot, err := telegram.NewBot(telegram.BotConfig{
			Token:        config.GetString("telegram_bot_token"),
			Debug:        config.GetBool("debug"),
			SystemChatID: cfg.SystemChatID,
		})
		if err != nil {
			log.Errorf("Failed to create bot: %v", err)
			os.Exit(1)
		}
		notifier = bot
	}

	return alert.NewMonitor(cfg, marketcache.New(), sources, notifier, metrics)
}

// noopNotifier backs the cleanup-only invocation, which never dispatches.
type noopNotifier struct{}

func (noopNotifier) Send(int64, string) error { return nil }

func runContinuous(monitor *alert.Monitor, metrics *alert.Metrics) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		monitor.Start(ctx)
		close(stopped)
	}()

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := monitor.Cleanup(ctx); err != nil {
					log.Errorf("Cleanup failed: %v", err)
				}
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(metricsSaveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				saveMonitorMetrics(metrics)
			}
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("Shutting down, waiting for the current pass to finish...")
		cancel()

		select {
		case <-stopped:
		case <-time.After(shutdownGrace):
			log.Warn("Monitor did not stop in time, exiting anyway")
		}

		saveMonitorMetrics(metrics)
		log.Info("Metrics saved, shutting down...")
		os.Exit(0)
	}()

	if err := launchMetricsAndHealthServer(config.GetInt("metrics_port")); err != nil {
		log.Errorf("Failed to start metrics and health server: %v", err)
		os.Exit(1)
	}
}

func setupLogging() {
	log.SetLevel(log.InfoLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting alert monitor...")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func launchMetricsAndHealthServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", healthCheckHandler)

	log.Infof("Launching metrics and health endpoint on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), http.DefaultServeMux)
}

func loadMonitorMetrics(m *alert.Metrics) {
	scalars := map[string]prometheus.Counter{
		"passes_completed":     m.PassesCompleted,
		"pass_failures":        m.PassFailures,
		"price_fetches":        m.PriceFetches,
		"notifications_sent":   m.NotificationsSent,
		"notifications_failed": m.NotificationsFailed,
	}
	for name, counter := range scalars {
		value, err := database.GetMetric(name)
		if err != nil {
			log.Errorf("Failed to load metric %s: %v", name, err)
			continue
		}
		counter.Add(value)
	}

	loadLabeledMetric("alerts_triggered", m.AlertsTriggered)
	loadLabeledMetric("fetch_failures", m.FetchFailures)

	log.Debug("Metrics loaded from database.")
}

func loadLabeledMetric(name string, vec *prometheus.CounterVec) {
	labeled, err := database.GetMetricsWithLabels(name)
	if err != nil {
		log.Errorf("Failed to load metric %s: %v", name, err)
		return
	}
	for _, values := range labeled {
		for labelValue, value := range values {
			vec.WithLabelValues(labelValue).Add(value)
		}
	}
}

func saveMonitorMetrics(m *alert.Metrics) {
	scalars := map[string]prometheus.Collector{
		"passes_completed":     m.PassesCompleted,
		"pass_failures":        m.PassFailures,
		"price_fetches":        m.PriceFetches,
		"notifications_sent":   m.NotificationsSent,
		"notifications_failed": m.NotificationsFailed,
	}
	for name, collector := range scalars {
		database.SaveMetric(name, "", "", getMetricValue(collector))
	}

	saveLabeledMetric("alerts_triggered", "market_type", m.AlertsTriggered)
	saveLabeledMetric("fetch_failures", "provider", m.FetchFailures)

	log.Debug("Metrics saved to database.")
}

func saveLabeledMetric(name, labelKey string, vec *prometheus.CounterVec) {
	metricChan := make(chan prometheus.Metric, 1)
	go func() {
		vec.Collect(metricChan)
		close(metricChan)
	}()

	for metric := range metricChan {
		metricProto := &dto.Metric{}
		if err := metric.Write(metricProto); err != nil {
			log.Errorf("Failed to read %s metric: %v", name, err)
			continue
		}

		var labelValue string
		for _, label := range metricProto.Label {
			if label.GetName() == labelKey {
				labelValue = label.GetValue()
			}
		}
		database.SaveMetric(name, labelKey, labelValue, metricProto.Counter.GetValue())
	}
}

func getMetricValue(metric prometheus.Collector) float64 {
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Errorf("Failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		return metricProto.Counter.GetValue()
	}
	if metricProto.Gauge != nil {
		return metricProto.Gauge.GetValue()
	}
	return 0
}
