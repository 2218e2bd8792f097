package alert

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"marketwatch-telegram-bot/internal/types"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestConditionMet(t *testing.T) {
	tests := []struct {
		name      string
		condition types.Condition
		target    string
		current   string
		want      bool
	}{
		{"above: strictly greater triggers", types.ConditionAbove, "50000", "50001", true},
		{"above: equal does not trigger", types.ConditionAbove, "50000", "50000", false},
		{"above: lower does not trigger", types.ConditionAbove, "50000", "49999", false},

		{"below: strictly lower triggers", types.ConditionBelow, "50000", "49999", true},
		{"below: equal does not trigger", types.ConditionBelow, "50000", "50000", false},

		{"equals: within tolerance triggers", types.ConditionEquals, "100.00", "100.005", true},
		{"equals: outside tolerance does not trigger", types.ConditionEquals, "100.00", "100.02", false},
		{"equals: tolerance is absolute, not relative", types.ConditionEquals, "0.50", "0.505", true},
		{"equals: exactly at the boundary does not trigger", types.ConditionEquals, "100.00", "100.01", false},

		{"crosses_above: at target triggers", types.ConditionCrossesAbove, "50000", "50000", true},
		{"crosses_above: above target triggers", types.ConditionCrossesAbove, "50000", "50001", true},
		{"crosses_above: below target does not trigger", types.ConditionCrossesAbove, "50000", "49999", false},

		{"crosses_below: at target triggers", types.ConditionCrossesBelow, "50000", "50000", true},
		{"crosses_below: below target triggers", types.ConditionCrossesBelow, "50000", "49999", true},

		{"unknown condition never triggers", types.Condition("bogus"), "1", "1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConditionMet(tt.condition, dec(tt.current), dec(tt.target))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateAtMostOneTrigger(t *testing.T) {
	a := types.Alert{
		ID:        1,
		Symbol:    "BTC",
		Condition: types.ConditionAbove,
		Target:    dec("50000"),
		IsActive:  true,
		Repeat:    false,
	}
	current := dec("50001")

	assert.Equal(t, NewlyTriggered, Evaluate(a, current))

	// apply the one-shot transition the monitor persists
	a.IsTriggered = true
	a.IsActive = false

	for i := 0; i < 5; i++ {
		assert.Equal(t, NoChange, Evaluate(a, current), "one-shot alert must fire exactly once")
	}
}

func TestEvaluateRepeatNeedsRearm(t *testing.T) {
	a := types.Alert{
		ID:        2,
		Symbol:    "ETH",
		Condition: types.ConditionBelow,
		Target:    dec("3000"),
		IsActive:  true,
		Repeat:    true,
	}
	current := dec("2900")

	assert.Equal(t, NewlyTriggered, Evaluate(a, current))

	// repeat alerts stay active but silent until re-armed
	a.IsTriggered = true
	assert.Equal(t, NoChange, Evaluate(a, current))

	// external reset re-arms it
	a.IsTriggered = false
	assert.Equal(t, NewlyTriggered, Evaluate(a, current))
}

func TestEvaluateInactiveNeverFires(t *testing.T) {
	a := types.Alert{
		Symbol:    "BTC",
		Condition: types.ConditionAbove,
		Target:    dec("1"),
		IsActive:  false,
	}
	assert.Equal(t, NoChange, Evaluate(a, dec("2")))
}

func TestRenderMessageEscapesMarkdown(t *testing.T) {
	change := dec("-2.50")
	a := types.Alert{
		Symbol:    "BTCUSDT",
		Condition: types.ConditionAbove,
		Target:    dec("50000"),
	}
	current := types.NormalizedPrice{
		Symbol:    "BTCUSDT",
		Price:     dec("50123.45"),
		Change24h: &change,
	}

	text := RenderMessage(a, current)
	assert.Contains(t, text, "Price Alert Triggered")
	assert.Contains(t, text, "BTCUSDT")
	// prices above 1000 render without decimals, comma-separated
	assert.Contains(t, text, `50,123`)
	assert.Contains(t, text, `50,000`)
	assert.Contains(t, text, `\-2\.50`)
}
