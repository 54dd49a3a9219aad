package app

import (
	"strings"
)

// DealContext is the accumulated field set for one deal. Keys are not a fixed
// schema: analysis responses are merged back in, so nested fragments such as
// "property" or "terms" show up next to the raw intake fields.
type DealContext map[string]any

// MergeDealContext shallow-merges patch over current. Fields present in patch
// always win. Neither input is mutated.
func MergeDealContext(current DealContext, patch DealContext) DealContext {
	merged := make(DealContext, len(current)+len(patch))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

// Clone returns a shallow copy so callers can pass a context across a
// round-trip without aliasing controller state.
func (d DealContext) Clone() DealContext {
	if d == nil {
		return nil
	}
	return MergeDealContext(d, nil)
}

// ResolveLocation finds the city/state pair for a deal, checking the flat
// fields first, then the nested property fragment, then the property fragment
// of the last analysis result. Empty strings mean "unknown", not an error.
func ResolveLocation(deal DealContext) (city, state string) {
	if deal == nil {
		return "", ""
	}
	city = stringField(deal, "city")
	state = stringField(deal, "state")
	if city != "" || state != "" {
		return city, state
	}
	if prop, ok := deal["property"].(map[string]any); ok {
		city = stringField(prop, "city")
		state = stringField(prop, "state")
		if city != "" || state != "" {
			return city, state
		}
	}
	if analysis, ok := deal["analysis"].(map[string]any); ok {
		if prop, ok := analysis["property"].(map[string]any); ok {
			return stringField(prop, "city"), stringField(prop, "state")
		}
	}
	return "", ""
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// numericDealFields are entered with thousands separators in the UI and need
// cleanup before they are sent to the analysis service.
var numericDealFields = map[string]bool{
	"purchasePrice":       true,
	"rehabBudget":         true,
	"arv":                 true,
	"existingLoanBalance": true,
	"interestReserves":    true,
	"creditScore":         true,
	"monthlyRent":         true,
}

// CleanNumber strips commas and dollar signs from a user-entered amount.
func CleanNumber(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, ",", "")
	value = strings.ReplaceAll(value, "$", "")
	return value
}

// NormalizeFieldValue applies per-field cleanup to a raw user answer before
// it is merged into a deal context.
func NormalizeFieldValue(field, value string) string {
	value = strings.TrimSpace(value)
	if field == "experienceLevel" {
		return normalizeExperience(value)
	}
	if numericDealFields[field] {
		return CleanNumber(value)
	}
	return value
}

// normalizeExperience buckets a free-text flip count into an experience tier.
// The "3"/"10" check runs before the "+" check, so "10+" lands on
// intermediate; this matches the service's own digit-based normalization.
func normalizeExperience(value string) string {
	switch value {
	case "beginner", "intermediate", "pro":
		return value
	}
	switch value {
	case "0", "1", "2":
		return "beginner"
	}
	if strings.Contains(value, "3") || strings.Contains(value, "10") {
		return "intermediate"
	}
	if strings.Contains(value, "+") {
		return "pro"
	}
	return value
}
