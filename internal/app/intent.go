package app

import "strings"

// ActionKind names a re-analysis operation executed against an existing deal.
type ActionKind string

const (
	ActionStressTest      ActionKind = "stress_test"
	ActionWorstCase       ActionKind = "worst_case"
	ActionCityOpportunity ActionKind = "city_opportunity"
	ActionAPRRisk         ActionKind = "apr_risk"
	ActionCashToClose     ActionKind = "cash_to_close"
	ActionHoldSensitivity ActionKind = "hold_sensitivity"
	ActionFindLenders     ActionKind = "find_lenders"
	ActionRefiDSCR        ActionKind = "refi_dscr"
)

// Intent is the outcome of classifying one free-text input.
type Intent string

const (
	// IntentAction routes to a named action; the kind rides alongside.
	IntentAction Intent = "action"
	// IntentDeal starts the guided intake for a new deal.
	IntentDeal Intent = "deal"
	// IntentNone falls through to a generic chat turn.
	IntentNone Intent = "none"
)

// intentRule is one row of the classifier table. Rules are evaluated top to
// bottom and the first rule whose keywords match wins, so the table order is
// the priority order. Scenario and market detectors sit above the generic
// deal-intent detector on purpose: a user who is already mid-analysis asking
// about downside risk must not be routed into a second intake.
type intentRule struct {
	keywords     []string
	action       ActionKind
	dealIntent   bool
	requiresDeal bool
}

var intentRules = []intentRule{
	{keywords: []string{"stress", "what if", "downside"}, action: ActionStressTest},
	{keywords: []string{"worst", "worst case", "downside scenario", "disaster", "what could go wrong"}, action: ActionWorstCase},
	{keywords: []string{"city", "market", "invest in", "is this city good"}, action: ActionCityOpportunity},
	{keywords: []string{"apr", "default", "extension", "true cost", "interest risk"}, action: ActionAPRRisk},
	{keywords: []string{"cash to close", "out of pocket", "closing costs", "bring to closing"}, action: ActionCashToClose},
	{keywords: []string{"hold", "timeline", "how long", "extra month"}, action: ActionHoldSensitivity},
	{keywords: []string{"i have a deal", "analyze this deal", "run numbers", "estimate this", "underwrite"}, dealIntent: true},
	{keywords: []string{"lender"}, action: ActionFindLenders, requiresDeal: true},
	{keywords: []string{"dscr"}, action: ActionRefiDSCR, requiresDeal: true},
}

// Classify maps free text to an action, a deal intent, or none. hasDeal and
// intakeActive gate the rules that only make sense in one phase: deal intent
// is honored only before any deal has been analyzed and while intake is not
// already running, and the lender/DSCR follow-ups only once a deal exists.
func Classify(text string, hasDeal, intakeActive bool) (Intent, ActionKind) {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		if !matchesAny(lower, rule.keywords) {
			continue
		}
		if rule.dealIntent {
			if hasDeal || intakeActive {
				continue
			}
			return IntentDeal, ""
		}
		if rule.requiresDeal && !hasDeal {
			continue
		}
		return IntentAction, rule.action
	}
	return IntentNone, ""
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ParseAction resolves a wire or command name to an ActionKind.
func ParseAction(value string) (ActionKind, bool) {
	switch ActionKind(strings.ToLower(strings.TrimSpace(value))) {
	case ActionStressTest:
		return ActionStressTest, true
	case ActionWorstCase:
		return ActionWorstCase, true
	case ActionCityOpportunity:
		return ActionCityOpportunity, true
	case ActionAPRRisk:
		return ActionAPRRisk, true
	case ActionCashToClose:
		return ActionCashToClose, true
	case ActionHoldSensitivity:
		return ActionHoldSensitivity, true
	case ActionFindLenders:
		return ActionFindLenders, true
	case ActionRefiDSCR:
		return ActionRefiDSCR, true
	default:
		return ActionKind(""), false
	}
}
