package config

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	str2duration "github.com/xhit/go-str2duration/v2"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		viper.AutomaticEnv()

		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("system_channel_id", "SYSTEM_CHANNEL_ID")
		viper.BindEnv("database_path", "DATABASE_PATH")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")

		viper.BindEnv("check_interval_seconds", "CHECK_INTERVAL_SECONDS")
		viper.BindEnv("price_cache_ttl_seconds", "PRICE_CACHE_TTL_SECONDS")
		viper.BindEnv("funding_cache_ttl_seconds", "FUNDING_CACHE_TTL_SECONDS")
		viper.BindEnv("alert_retention", "ALERT_RETENTION")

		viper.BindEnv("exchange_api_url", "EXCHANGE_API_URL")
		viper.BindEnv("futures_api_url", "FUTURES_API_URL")
		viper.BindEnv("dex_api_url", "DEX_API_URL")
		viper.BindEnv("quotes_api_url", "QUOTES_API_URL")
		viper.BindEnv("quotes_api_key", "QUOTES_API_KEY")
		viper.BindEnv("paprika_api_pro_key", "PAPRIKA_API_PRO_KEY")

		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
		viper.SetDefault("database_path", "data/bot.db")
		viper.SetDefault("check_interval_seconds", 60)
		viper.SetDefault("price_cache_ttl_seconds", 30)
		viper.SetDefault("funding_cache_ttl_seconds", 300)
		viper.SetDefault("alert_retention", "7d")
		viper.SetDefault("exchange_api_url", "https://api.binance.com")
		viper.SetDefault("futures_api_url", "https://fapi.binance.com")
		viper.SetDefault("dex_api_url", "https://api.dexscreener.com")
		viper.SetDefault("quotes_api_url", "https://api.twelvedata.com")
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetInt64(key string) int64 {
	InitConfig()
	return viper.GetInt64(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

// GetDuration parses duration values, accepting day suffixes like "7d".
func GetDuration(key string) time.Duration {
	InitConfig()
	d, err := str2duration.ParseDuration(viper.GetString(key))
	if err != nil {
		log.Errorf("invalid duration for %s: %v", key, err)
		return 0
	}
	return d
}
