package app

import (
	"encoding/json"
	"fmt"
)

// ActionPayload is the closed set of result shapes the analysis service can
// return. Each action kind has exactly one variant, decoded once at the
// dispatch boundary; nothing downstream inspects raw JSON.
type ActionPayload interface {
	actionPayload()
}

// DealAnalysis is the full underwriting card returned by intake completion,
// initial deal submission, and free-chat CARD_DEAL turns.
type DealAnalysis struct {
	Property struct {
		City  string `json:"city"`
		State string `json:"state"`
	} `json:"property"`
	Terms struct {
		InterestRate   *float64 `json:"interest_rate"`
		Points         *float64 `json:"points"`
		LTVARV         *float64 `json:"ltv_arv"`
		LoanAmount     *float64 `json:"loan_amount"`
		LoanTermMonths int      `json:"loan_term_months"`
	} `json:"terms"`
	FinancingCosts struct {
		PrepaidInterest   *float64 `json:"prepaid_interest"`
		OriginationFees   *float64 `json:"origination_fees"`
		ProcessingFees    *float64 `json:"processing_fees"`
		TotalClosingCosts *float64 `json:"total_closing_costs"`
	} `json:"financing_costs"`
	SaleAndProfit struct {
		EstimatedSalePrice *float64 `json:"estimated_sale_price"`
		PurchasePrice      *float64 `json:"purchase_price"`
		RehabBudget        *float64 `json:"rehab_budget"`
		TotalProjectCost   *float64 `json:"total_project_cost"`
		GrossProfit        *float64 `json:"gross_profit"`
		ROIPercent         *float64 `json:"roi_percent"`
	} `json:"sale_and_profit"`
	Stipulations      []string `json:"stipulations"`
	KeyRisks          []string `json:"key_risks"`
	FollowUpQuestions []string `json:"follow_up_questions"`
	Verdict           struct {
		Rating       string   `json:"rating"`
		Summary      string   `json:"summary"`
		Improvements []string `json:"improvements"`
	} `json:"verdict"`
}

func (DealAnalysis) actionPayload() {}

type StressScenario struct {
	Name        string   `json:"name"`
	ROIPercent  *float64 `json:"roi_percent"`
	GrossProfit *float64 `json:"gross_profit"`
	Verdict     string   `json:"verdict"`
}

type StressTestResult struct {
	Base             DealAnalysis     `json:"base"`
	ExtraInterest2Mo float64          `json:"extra_interest_2mo"`
	Scenarios        []StressScenario `json:"scenarios"`
}

func (StressTestResult) actionPayload() {}

type WorstCaseResult struct {
	Assumptions struct {
		ARVChange           string `json:"arv_change"`
		RehabChange         string `json:"rehab_change"`
		HoldExtensionMonths int    `json:"hold_extension_months"`
	} `json:"assumptions"`
	BaseCase struct {
		GrossProfit *float64 `json:"gross_profit"`
		ROIPercent  *float64 `json:"roi_percent"`
	} `json:"base_case"`
	WorstCase struct {
		GrossProfit *float64 `json:"gross_profit"`
		ROIPercent  *float64 `json:"roi_percent"`
	} `json:"worst_case"`
	DamageBreakdown map[string]float64 `json:"damage_breakdown"`
	Verdict         struct {
		Rating  string `json:"rating"`
		Message string `json:"message"`
	} `json:"verdict"`
	Warning string `json:"warning"`
}

func (WorstCaseResult) actionPayload() {}

type CityOpportunityResult struct {
	City          string `json:"city"`
	State         string `json:"state"`
	OverallRating string `json:"overall_rating"`
	StrategyFit   struct {
		FixAndFlip string `json:"fix_and_flip"`
		BuyAndHold string `json:"buy_and_hold"`
	} `json:"strategy_fit"`
	MarketCharacteristics []string `json:"market_characteristics"`
	KeyRisks              []string `json:"key_risks"`
	WhatWorksHere         []string `json:"what_works_here"`
	WhatToAvoid           []string `json:"what_to_avoid"`
	BottomLine            string   `json:"bottom_line"`
}

func (CityOpportunityResult) actionPayload() {}

type APRRiskResult struct {
	HeadlineAPR *float64 `json:"headline_apr"`
	BaseCosts   struct {
		InterestPaid       *float64 `json:"interest_paid"`
		PointsCost         *float64 `json:"points_cost"`
		TotalFinancingCost *float64 `json:"total_financing_cost"`
	} `json:"base_costs"`
	ExtensionRisk struct {
		MonthlyInterest *float64 `json:"monthly_interest"`
		ThreeMonth      *float64 `json:"3_month_extension"`
		SixMonth        *float64 `json:"6_month_extension"`
	} `json:"extension_risk"`
	DefaultRisk struct {
		DefaultRate      *float64 `json:"default_rate"`
		MonthlyAtDefault *float64 `json:"monthly_interest_at_default"`
		NinetyDayCost    *float64 `json:"90_day_default_cost"`
	} `json:"default_risk"`
	Warning string `json:"warning"`
}

func (APRRiskResult) actionPayload() {}

type CashToCloseResult struct {
	LoanAmount *float64 `json:"loan_amount"`
	Categories struct {
		FixedAdmin          map[string]float64 `json:"fixed_admin"`
		EscrowAndTitleAdmin struct {
			BaseFee    float64 `json:"base_fee"`
			ScaledFee  float64 `json:"scaled_fee"`
			CapApplied bool    `json:"cap_applied"`
			Subtotal   float64 `json:"subtotal"`
		} `json:"escrow_and_title_admin"`
		TitleInsurance struct {
			RateBasis string   `json:"rate_basis"`
			Amount    *float64 `json:"amount"`
		} `json:"title_insurance"`
		RecordingFees struct {
			Estimated *float64 `json:"estimated"`
		} `json:"recording_fees"`
	} `json:"categories"`
	TotalOutOfPocket *float64 `json:"total_out_of_pocket"`
	Excludes         []string `json:"excludes"`
}

func (CashToCloseResult) actionPayload() {}

type HoldScenario struct {
	HoldMonths   int      `json:"hold_months"`
	InterestCost *float64 `json:"interest_cost"`
	NetProfit    *float64 `json:"net_profit"`
}

type HoldSensitivityResult struct {
	MonthlyBurn *float64       `json:"monthly_burn"`
	Scenarios   []HoldScenario `json:"scenarios"`
	Warning     string         `json:"warning"`
}

func (HoldSensitivityResult) actionPayload() {}

type Lender struct {
	Name           string   `json:"name"`
	Rating         *float64 `json:"rating"`
	Reviews        int      `json:"reviews"`
	Grade          string   `json:"grade"`
	Score          *float64 `json:"score"`
	Summary        string   `json:"summary"`
	EstimatedTerms struct {
		Rate   string `json:"rate"`
		Points string `json:"points"`
		LTV    string `json:"ltv"`
		Speed  string `json:"speed"`
	} `json:"estimatedTerms"`
}

type LenderResults struct {
	City    string   `json:"city"`
	State   string   `json:"state"`
	Lenders []Lender `json:"lenders"`
}

func (LenderResults) actionPayload() {}

type DSCRResult struct {
	Status             string            `json:"status"`
	DSCR               *float64          `json:"dscr"`
	EstimatedNOI       *float64          `json:"estimated_noi"`
	MonthlyDebtService *float64          `json:"monthly_debt_service"`
	MaxDSCRLoan        *float64          `json:"max_dscr_loan"`
	ExistingLoanPayoff *float64          `json:"existing_loan_payoff"`
	CashOut            *float64          `json:"cash_out"`
	ShortToClose       *float64          `json:"short_to_close"`
	Overleveraged      bool              `json:"overleveraged"`
	Assumptions        map[string]string `json:"assumptions"`
	Guidance           string            `json:"guidance"`
}

func (DSCRResult) actionPayload() {}

// decodeActionPayload picks the variant for an action kind and decodes the
// raw response body into it.
func decodeActionPayload(action ActionKind, raw json.RawMessage) (ActionPayload, error) {
	var (
		payload ActionPayload
		err     error
	)
	switch action {
	case ActionStressTest:
		var v StressTestResult
		err = json.Unmarshal(raw, &v)
		payload = v
	case ActionWorstCase:
		var v WorstCaseResult
		err = json.Unmarshal(raw, &v)
		payload = v
	case ActionCityOpportunity:
		var v CityOpportunityResult
		err = json.Unmarshal(raw, &v)
		payload = v
	case ActionAPRRisk:
		var v APRRiskResult
		err = json.Unmarshal(raw, &v)
		payload = v
	case ActionCashToClose:
		var v CashToCloseResult
		err = json.Unmarshal(raw, &v)
		payload = v
	case ActionHoldSensitivity:
		var v HoldSensitivityResult
		err = json.Unmarshal(raw, &v)
		payload = v
	case ActionFindLenders:
		var v LenderResults
		err = json.Unmarshal(raw, &v)
		payload = v
	case ActionRefiDSCR:
		var v DSCRResult
		err = json.Unmarshal(raw, &v)
		payload = v
	default:
		return nil, fmt.Errorf("no payload variant for action %q", action)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", action, err)
	}
	return payload, nil
}
