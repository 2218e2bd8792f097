package alert

import (
	"fmt"

	"github.com/shopspring/decimal"

	"marketwatch-telegram-bot/internal/types"
	"marketwatch-telegram-bot/lib/helpers"
	"marketwatch-telegram-bot/lib/translation"
)

// Decision is the outcome of evaluating one alert against a fresh price.
type Decision int

const (
	NoChange Decision = iota
	NewlyTriggered
)

// equalsTolerance is absolute on purpose: alerts target price levels, and a
// relative tolerance would behave differently at $0.50 than at $50,000.
var equalsTolerance = decimal.NewFromFloat(0.01)

// ConditionMet reports whether the alert condition holds for the current
// price. crosses_above/crosses_below are stateless one-sided checks; true
// crossing detection would need the previously observed price, which is not
// persisted per alert.
func ConditionMet(condition types.Condition, current, target decimal.Decimal) bool {
	switch condition {
	case types.ConditionAbove:
		return current.GreaterThan(target)
	case types.ConditionBelow:
		return current.LessThan(target)
	case types.ConditionEquals:
		return current.Sub(target).Abs().LessThan(equalsTolerance)
	case types.ConditionCrossesAbove:
		return current.GreaterThanOrEqual(target)
	case types.ConditionCrossesBelow:
		return current.LessThanOrEqual(target)
	}
	return false
}

// Evaluate decides whether an alert transitions into the triggered state.
// Inactive alerts never fire. An alert already in the triggered state stays
// silent until an external reset re-arms it, so repeat alerts cannot storm
// a chat on every poll.
func Evaluate(a types.Alert, current decimal.Decimal) Decision {
	if !a.IsActive || a.IsTriggered {
		return NoChange
	}
	if ConditionMet(a.Condition, current, a.Target) {
		return NewlyTriggered
	}
	return NoChange
}

func conditionPhrase(condition types.Condition) string {
	switch condition {
	case types.ConditionAbove:
		return translation.Translate("is above")
	case types.ConditionBelow:
		return translation.Translate("is below")
	case types.ConditionEquals:
		return translation.Translate("is at")
	case types.ConditionCrossesAbove:
		return translation.Translate("crossed above")
	case types.ConditionCrossesBelow:
		return translation.Translate("crossed below")
	}
	return string(condition)
}

// RenderMessage builds the MarkdownV2 notification text for a newly
// triggered alert.
func RenderMessage(a types.Alert, p types.NormalizedPrice) string {
	text := fmt.Sprintf(
		"🚨 *%s*\n\n*%s* %s *$%s*\n%s: *$%s*",
		helpers.EscapeMarkdownV2(translation.Translate("Price Alert Triggered")),
		helpers.EscapeMarkdownV2(a.Symbol),
		helpers.EscapeMarkdownV2(conditionPhrase(a.Condition)),
		helpers.FormatPriceUS(a.Target.InexactFloat64(), true),
		helpers.EscapeMarkdownV2(translation.Translate("Current Price")),
		helpers.FormatPriceUS(p.Price.InexactFloat64(), true),
	)

	if p.Change24h != nil {
		text += fmt.Sprintf("\n%s: *%s%%*",
			helpers.EscapeMarkdownV2(translation.Translate("24h Change")),
			helpers.EscapeMarkdownV2(p.Change24h.StringFixed(2)),
		)
	}
	return text
}
