package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeDealContextPatchWins(t *testing.T) {
	current := DealContext{"purchasePrice": "500000", "city": "Austin"}
	patch := DealContext{"city": "Dallas", "arv": "650000"}

	merged := MergeDealContext(current, patch)

	assert.Equal(t, "Dallas", merged["city"])
	assert.Equal(t, "500000", merged["purchasePrice"])
	assert.Equal(t, "650000", merged["arv"])
	// inputs untouched
	assert.Equal(t, "Austin", current["city"])
	assert.NotContains(t, patch, "purchasePrice")
}

func TestCloneDoesNotAlias(t *testing.T) {
	original := DealContext{"city": "Austin"}
	clone := original.Clone()
	clone["city"] = "Dallas"
	assert.Equal(t, "Austin", original["city"])

	var nilCtx DealContext
	assert.Nil(t, nilCtx.Clone())
}

func TestResolveLocationFallbackOrder(t *testing.T) {
	tests := []struct {
		name      string
		deal      DealContext
		wantCity  string
		wantState string
	}{
		{
			name:      "flat fields win",
			deal:      DealContext{"city": "Austin", "state": "TX", "property": map[string]any{"city": "Dallas"}},
			wantCity:  "Austin",
			wantState: "TX",
		},
		{
			name:      "property fragment",
			deal:      DealContext{"property": map[string]any{"city": "Dallas", "state": "TX"}},
			wantCity:  "Dallas",
			wantState: "TX",
		},
		{
			name: "analysis property fragment",
			deal: DealContext{"analysis": map[string]any{
				"property": map[string]any{"city": "Houston", "state": "TX"},
			}},
			wantCity:  "Houston",
			wantState: "TX",
		},
		{
			name:     "nothing known",
			deal:     DealContext{"purchasePrice": "500000"},
			wantCity: "",
		},
		{
			name:     "nil deal",
			deal:     nil,
			wantCity: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, state := ResolveLocation(tt.deal)
			assert.Equal(t, tt.wantCity, city)
			assert.Equal(t, tt.wantState, state)
		})
	}
}

func TestCleanNumber(t *testing.T) {
	assert.Equal(t, "500000", CleanNumber("$500,000"))
	assert.Equal(t, "1250000.50", CleanNumber(" 1,250,000.50 "))
	assert.Equal(t, "abc", CleanNumber("abc"))
}

func TestNormalizeFieldValue(t *testing.T) {
	assert.Equal(t, "500000", NormalizeFieldValue("purchasePrice", "$500,000"))
	assert.Equal(t, "742", NormalizeFieldValue("creditScore", "742"))
	assert.Equal(t, "123 Main St", NormalizeFieldValue("address", " 123 Main St "))
	// non-numeric fields keep separators
	assert.Equal(t, "Austin, TX", NormalizeFieldValue("city", "Austin, TX"))
}

func TestNormalizeExperience(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"beginner", "beginner"},
		{"pro", "pro"},
		{"0", "beginner"},
		{"2", "beginner"},
		{"3", "intermediate"},
		{"3-10", "intermediate"},
		// digit check runs before the "+" check
		{"10+", "intermediate"},
		{"20+", "pro"},
		{"lots", "lots"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeFieldValue("experienceLevel", tt.in), "input %q", tt.in)
	}
}
