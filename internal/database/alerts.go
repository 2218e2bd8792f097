package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"marketwatch-telegram-bot/internal/types"
)

// InsertAlert saves an alert. chatID may be nil for system-wide alerts.
func InsertAlert(chatID *int64, symbol string, condition types.Condition, target decimal.Decimal, repeat bool) (int64, error) {
	if !condition.Valid() {
		return 0, fmt.Errorf("unknown alert condition: %s", condition)
	}

	query := `
	INSERT INTO alerts (chat_id, alert_type, symbol, condition, target_value, repeat)
	VALUES (?, 'price', ?, ?, ?, ?);`

	res, err := DB.Exec(query, chatID, symbol, string(condition), target.String(), repeat)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alert: %w", err)
	}
	return res.LastInsertId()
}

// DistinctActiveAlertSymbols returns the distinct set of symbols that have
// at least one active price alert. The monitor iterates symbols, not alert
// rows, so shared symbols cost a single upstream fetch per pass.
func DistinctActiveAlertSymbols() ([]string, error) {
	query := `SELECT DISTINCT symbol FROM alerts WHERE is_active = 1 AND alert_type = 'price' ORDER BY symbol;`

	rows, err := DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerted symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// GetActiveAlertsForSymbol fetches every active price alert for one symbol.
func GetActiveAlertsForSymbol(symbol string) ([]types.Alert, error) {
	query := `
	SELECT id, chat_id, alert_type, symbol, condition, target_value, is_active, is_triggered, triggered_at, message, repeat, created_at
	FROM alerts
	WHERE symbol = ? AND is_active = 1 AND alert_type = 'price';`

	rows, err := DB.Query(query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts for symbol %s: %w", symbol, err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// GetAlertsByChatID fetches all alerts owned by a chat.
func GetAlertsByChatID(chatID int64) ([]types.Alert, error) {
	query := `
	SELECT id, chat_id, alert_type, symbol, condition, target_value, is_active, is_triggered, triggered_at, message, repeat, created_at
	FROM alerts
	WHERE chat_id = ?;`

	rows, err := DB.Query(query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts for chat ID %d: %w", chatID, err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// MarkAlertTriggered flips an alert into the triggered state. The update is
// conditional on is_triggered = 0 so two overlapping passes cannot fire the
// same alert twice; it returns false when another pass already won.
func MarkAlertTriggered(alertID int64, message string, deactivate bool) (bool, error) {
	query := `
	UPDATE alerts
	SET is_triggered = 1,
	    triggered_at = CURRENT_TIMESTAMP,
	    message = ?,
	    is_active = CASE WHEN ? THEN 0 ELSE is_active END
	WHERE id = ? AND is_active = 1 AND is_triggered = 0;`

	res, err := DB.Exec(query, message, deactivate, alertID)
	if err != nil {
		return false, fmt.Errorf("failed to mark alert %d triggered: %w", alertID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// ResetAlert re-arms a triggered alert so it may fire again.
func ResetAlert(alertID int64) error {
	query := `UPDATE alerts SET is_triggered = 0, triggered_at = NULL, message = NULL WHERE id = ?;`
	_, err := DB.Exec(query, alertID)
	if err != nil {
		return fmt.Errorf("failed to reset alert %d: %w", alertID, err)
	}
	return nil
}

// DeleteStaleTriggeredAlerts removes one-shot alerts that fired longer ago
// than the retention window. Repeat alerts are kept; they stay armed until
// their owner deletes them.
func DeleteStaleTriggeredAlerts(olderThan time.Duration) (int64, error) {
	query := `
	DELETE FROM alerts
	WHERE is_triggered = 1 AND repeat = 0
	  AND triggered_at IS NOT NULL
	  AND triggered_at <= datetime('now', ?);`

	modifier := fmt.Sprintf("-%d seconds", int64(olderThan.Seconds()))
	res, err := DB.Exec(query, modifier)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale alerts: %w", err)
	}
	return res.RowsAffected()
}

func scanAlerts(rows *sql.Rows) ([]types.Alert, error) {
	var alerts []types.Alert
	for rows.Next() {
		var a types.Alert
		var condition, target string
		if err := rows.Scan(&a.ID, &a.ChatID, &a.AlertType, &a.Symbol, &condition, &target,
			&a.IsActive, &a.IsTriggered, &a.TriggeredAt, &a.Message, &a.Repeat, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		a.Condition = types.Condition(condition)
		value, err := decimal.NewFromString(target)
		if err != nil {
			return nil, fmt.Errorf("alert %d has malformed target %q: %w", a.ID, target, err)
		}
		a.Target = value
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
