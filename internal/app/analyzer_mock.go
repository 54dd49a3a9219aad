package app

import (
	"encoding/json"
	"fmt"
	"strings"
)

// mockAnalyzer simulates the analysis service for offline use and tests. It
// reproduces the service's intake question order and the shape of every
// action payload; the numbers are canned.
type mockAnalyzer struct{}

func newMockAnalyzer() *mockAnalyzer {
	return &mockAnalyzer{}
}

type mockQuestion struct {
	field    string
	question string
	options  []string
}

var mockIntakeQuestions = []mockQuestion{
	{field: "loanProgram", question: "Which loan program are you using? (Fix & Flip, New Construction, or Cash-Out Refinance)", options: []string{"fix_and_flip", "ground_up", "cash_out_refi"}},
	{field: "transactionType", question: "Is this a purchase or a refinance?", options: []string{"purchase", "refinance"}},
	{field: "purchasePrice", question: "What is the purchase price (or original purchase price if refinance)?"},
	{field: "existingLoanBalance", question: "How much is currently owed on the property?"},
	{field: "address", question: "What is the property address?"},
	{field: "city", question: "What city is the property located in?"},
	{field: "arv", question: "What is the after-repair value (ARV)?"},
	{field: "rehabBudget", question: "What is the rehab budget?"},
	{field: "interestReserves", question: "How much cash do you have available to cover monthly interest payments during the project?"},
	{field: "creditScore", question: "What is the estimated credit score?"},
	{field: "experienceLevel", question: "How many flips have you completed? (0–2, 3–10, 10+)", options: []string{"beginner", "intermediate", "pro"}},
}

func (m *mockAnalyzer) intake(req analyzeRequest) serviceResponse {
	for _, q := range mockIntakeQuestions {
		value, ok := req.Deal[q.field]
		if !ok {
			return serviceResponse{Field: q.field, Question: q.question, Options: q.options}
		}
		if s, isStr := value.(string); isStr && strings.TrimSpace(s) == "" {
			return serviceResponse{Field: q.field, Question: q.question, Options: q.options}
		}
	}
	return serviceResponse{Complete: true, UIMode: uiModeCardDeal, Response: m.analysisPayload(req.Deal)}
}

func (m *mockAnalyzer) action(req analyzeRequest) serviceResponse {
	switch req.Action {
	case ActionRefiDSCR:
		if missingString(req.Deal, "monthlyRent") {
			return serviceResponse{
				PendingField: "monthlyRent",
				Response:     json.RawMessage(`"What is the monthly rent for the property?"`),
			}
		}
		if missingString(req.Deal, "city") {
			return serviceResponse{
				PendingField: "city",
				Response:     json.RawMessage(`"What city is the property located in?"`),
			}
		}
		return serviceResponse{UIMode: uiModeChatDSCR, Response: mockDSCRPayload}
	case ActionStressTest:
		return serviceResponse{Response: mockStressPayload}
	case ActionWorstCase:
		return serviceResponse{Response: mockWorstCasePayload}
	case ActionCityOpportunity:
		city, state := ResolveLocation(req.Deal)
		payload, _ := json.Marshal(map[string]any{
			"city": city, "state": state,
			"overall_rating": "Neutral",
			"strategy_fit":   map[string]string{"fix_and_flip": "Moderate", "buy_and_hold": "Strong"},
			"market_characteristics": []string{"Steady buyer demand", "Moderate price growth"},
			"key_risks":              []string{"Seasonal liquidity swings"},
			"what_works_here":        []string{"Cosmetic rehabs under 4 months"},
			"what_to_avoid":          []string{"Heavy structural projects"},
			"bottom_line":            "Workable market for disciplined flips with conservative exits.",
		})
		return serviceResponse{Response: payload}
	case ActionAPRRisk:
		return serviceResponse{Response: mockAPRPayload}
	case ActionCashToClose:
		return serviceResponse{Response: mockCashToClosePayload}
	case ActionHoldSensitivity:
		return serviceResponse{Response: mockHoldPayload}
	case ActionFindLenders:
		city, state := ResolveLocation(req.Deal)
		payload, _ := json.Marshal(map[string]any{
			"city": city, "state": state,
			"lenders": []map[string]any{
				{"name": "Summit Capital Partners", "rating": 4.8, "reviews": 120, "grade": "A", "score": 54.0,
					"estimatedTerms": map[string]string{"rate": "10.5–11.5%", "points": "2–3", "ltv": "65–70% ARV", "speed": "Fast"},
					"summary":        "Investor-friendly lender with experience in fix and flip deals."},
				{"name": "Harborline Mortgage", "rating": 4.2, "reviews": 58, "grade": "B", "score": 44.9,
					"estimatedTerms": map[string]string{"rate": "11.5–12.5%", "points": "3–4", "ltv": "65–70% ARV", "speed": "Moderate"},
					"summary":        "Investor-friendly lender with experience in fix and flip deals."},
			},
		})
		return serviceResponse{Response: payload}
	}
	return serviceResponse{Response: json.RawMessage(`"Unsupported action."`)}
}

func (m *mockAnalyzer) chat(req analyzeRequest) serviceResponse {
	reply := fmt.Sprintf("I'm focused on real estate investing and deal analysis. You asked: %q. Let me know if you'd like help evaluating a property or loan structure.", req.Message)
	payload, _ := json.Marshal(reply)
	return serviceResponse{Response: payload}
}

func (m *mockAnalyzer) deal(req analyzeRequest) serviceResponse {
	return serviceResponse{UIMode: uiModeCardDeal, SessionID: "mock-session", Response: m.analysisPayload(req.Deal)}
}

func (m *mockAnalyzer) analysisPayload(deal DealContext) json.RawMessage {
	city, state := ResolveLocation(deal)
	if city == "" {
		city = "Austin"
	}
	if state == "" {
		state = "TX"
	}
	payload, _ := json.Marshal(map[string]any{
		"property": map[string]string{"city": city, "state": state},
		"terms": map[string]any{
			"interest_rate": 11.0, "points": 2.0, "ltv_arv": 70.0,
			"loan_amount": 455000.0, "loan_term_months": 12,
		},
		"financing_costs": map[string]any{
			"prepaid_interest": 4170.83, "origination_fees": 9100.0,
			"processing_fees": 1195.0, "total_closing_costs": 14465.83,
		},
		"sale_and_profit": map[string]any{
			"estimated_sale_price": 650000.0, "purchase_price": 500000.0,
			"rehab_budget": 75000.0, "total_project_cost": 594465.83,
			"gross_profit": 55534.17, "roi_percent": 9.34,
		},
		"stipulations":        []string{"Loan application", "Credit authorization", "Last 3 months of bank statements"},
		"key_risks":           []string{"Thin margin: small cost/timeline changes can erase profit."},
		"follow_up_questions": []string{"Want me to stress-test the deal (rehab +10%, timeline +2 months)?"},
		"verdict": map[string]any{
			"rating":       "Borderline Deal",
			"summary":      "Works on paper, but limited buffer for surprises.",
			"improvements": []string{"Negotiate purchase price or reduce scope to widen margin."},
		},
	})
	return payload
}

func missingString(deal DealContext, field string) bool {
	v, ok := deal[field]
	if !ok || v == nil {
		return true
	}
	s, isStr := v.(string)
	return isStr && strings.TrimSpace(s) == ""
}

var mockDSCRPayload = json.RawMessage(`{
	"status": "borderline", "dscr": 1.14,
	"estimated_noi": 2275.0, "monthly_debt_service": 1993.75,
	"max_dscr_loan": 487500.0, "existing_loan_payoff": 455000.0,
	"cash_out": 22750.0, "short_to_close": 0.0, "overleveraged": false,
	"assumptions": {"ltv_cap": "75% ARV", "noi_factor": "65% of rent", "payment_type": "interest-only", "closing_costs": "2% estimate"},
	"guidance": "DSCR refinance assumes payoff of existing bridge loan. Passing DSCR does not guarantee cash-out."
}`)

var mockStressPayload = json.RawMessage(`{
	"base": {"sale_and_profit": {"gross_profit": 55534.17, "roi_percent": 9.34}, "verdict": {"rating": "Borderline Deal"}},
	"extra_interest_2mo": 8341.67,
	"scenarios": [
		{"name": "Rehab +10%", "roi_percent": 7.9, "gross_profit": 47534.17, "verdict": "Weak Deal"},
		{"name": "Rehab +20%", "roi_percent": 6.5, "gross_profit": 39534.17, "verdict": "Weak Deal"},
		{"name": "ARV -5%", "roi_percent": 3.9, "gross_profit": 23034.17, "verdict": "Weak Deal"},
		{"name": "ARV -10%", "roi_percent": -1.5, "gross_profit": -9465.83, "verdict": "Weak Deal"}
	]
}`)

var mockWorstCasePayload = json.RawMessage(`{
	"assumptions": {"arv_change": "-10%", "rehab_change": "+15%", "hold_extension_months": 6},
	"base_case": {"gross_profit": 55534.17, "roi_percent": 9.34},
	"worst_case": {"gross_profit": -45540.0, "roi_percent": -7.5},
	"damage_breakdown": {"arv_hit": 65000.0, "rehab_overrun": 11250.0, "hold_extension_cost": 25025.0, "total_profit_erosion": 101074.17},
	"verdict": {"rating": "Failing", "message": "Worst-case scenario results in a material capital loss."},
	"warning": "Worst-case assumes no lender concessions, no market rebound, and full interest carry during extension."
}`)

var mockAPRPayload = json.RawMessage(`{
	"headline_apr": 13.0,
	"base_costs": {"interest_paid": 50050.0, "points_cost": 9100.0, "total_financing_cost": 59150.0},
	"extension_risk": {"monthly_interest": 4170.83, "3_month_extension": 12512.5, "6_month_extension": 25025.0},
	"default_risk": {"default_rate": 16.0, "monthly_interest_at_default": 6066.67, "90_day_default_cost": 18200.0},
	"warning": "Hard money loans are priced for speed, not forgiveness. Extensions and defaults dramatically increase effective cost of capital."
}`)

var mockCashToClosePayload = json.RawMessage(`{
	"loan_amount": 455000.0,
	"categories": {
		"fixed_admin": {"docs_fee": 600.0, "notary": 250.0, "courier": 250.0, "recording_service": 100.0, "wire_fee": 75.0, "endorsements": 300.0, "sb2_recording": 450.0, "sub_escrow": 125.0, "subtotal": 2150.0},
		"escrow_and_title_admin": {"base_fee": 1500.0, "scaled_fee": 455.0, "cap_applied": false, "subtotal": 1955.0},
		"title_insurance": {"rate_basis": "0.25% of loan amount", "amount": 1137.5},
		"recording_fees": {"estimated": 500.0}
	},
	"total_out_of_pocket": 5742.5,
	"excludes": ["Loan origination / points", "Prepaid interest", "Loan payoff", "Taxes and insurance escrows"]
}`)

var mockHoldPayload = json.RawMessage(`{
	"monthly_burn": 4170.83,
	"scenarios": [
		{"hold_months": 4, "interest_cost": 16683.33, "net_profit": 38850.84},
		{"hold_months": 6, "interest_cost": 25025.0, "net_profit": 30509.17},
		{"hold_months": 9, "interest_cost": 37537.5, "net_profit": 17996.67},
		{"hold_months": 12, "interest_cost": 50050.0, "net_profit": 5484.17}
	],
	"warning": "Each additional month materially impacts profit. Timeline risk is the #1 killer of flip returns."
}`)
