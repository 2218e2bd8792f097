package database

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var DB *sql.DB

func InitDB(dbPath string) error {
	var err error
	DB, err = sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	createAlertsTable := `
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER DEFAULT NULL,
		alert_type TEXT NOT NULL DEFAULT 'price',
		symbol TEXT NOT NULL,
		condition TEXT NOT NULL,
		target_value TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		is_triggered INTEGER NOT NULL DEFAULT 0,
		triggered_at TIMESTAMP DEFAULT NULL,
		message TEXT DEFAULT NULL,
		repeat INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	_, err = DB.Exec(createAlertsTable)
	if err != nil {
		return fmt.Errorf("failed to create alerts table: %w", err)
	}

	createCacheTable := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		cache_key TEXT PRIMARY KEY,
		data_type TEXT NOT NULL,
		data TEXT NOT NULL,
		ttl_seconds INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);`
	_, err = DB.Exec(createCacheTable)
	if err != nil {
		return fmt.Errorf("failed to create cache_entries table: %w", err)
	}

	createMetricsTable := `
		CREATE TABLE IF NOT EXISTS metrics (
		metric_name TEXT NOT NULL,
		label_key TEXT DEFAULT NULL,
		label_value TEXT DEFAULT NULL,
		metric_value REAL NOT NULL,
		PRIMARY KEY (metric_name, label_key, label_value)
	);`
	_, err = DB.Exec(createMetricsTable)
	if err != nil {
		return fmt.Errorf("failed to create metrics table: %w", err)
	}

	log.Debug("Database initialized successfully.")
	return nil
}

func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
