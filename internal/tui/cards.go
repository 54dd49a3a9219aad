package tui

import (
	"fmt"
	"strings"

	"flipbot/internal/app"
)

// renderPayload turns a typed result message into terminal text. Payloads
// restored from disk decode as generic maps; those fall back to a short note
// instead of a formatted card.
func renderPayload(msg app.Message) string {
	switch p := msg.Payload.(type) {
	case app.DealAnalysis:
		return renderDealCard(p)
	case *app.DealAnalysis:
		return renderDealCard(*p)
	case app.StressTestResult:
		return renderStressTest(p)
	case app.WorstCaseResult:
		return renderWorstCase(p)
	case app.CityOpportunityResult:
		return renderCityOpportunity(p)
	case app.APRRiskResult:
		return renderAPRRisk(p)
	case app.CashToCloseResult:
		return renderCashToClose(p)
	case app.HoldSensitivityResult:
		return renderHoldSensitivity(p)
	case app.LenderResults:
		return renderLenders(p)
	case app.DSCRResult:
		return renderDSCR(p)
	}
	if msg.Text != "" {
		return msg.Text
	}
	return "[saved analysis result]"
}

func money(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func pct(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func verdictLine(rating string) string {
	style := verdictBadStyle
	if strings.Contains(strings.ToLower(rating), "good") || strings.Contains(strings.ToLower(rating), "strong") {
		style = verdictGoodStyle
	}
	return style.Render(rating)
}

func bullets(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(cardLabelStyle.Render(title))
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString("  • ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}

func renderDealCard(a app.DealAnalysis) string {
	var b strings.Builder
	title := "Deal Analysis"
	if a.Property.City != "" {
		title = fmt.Sprintf("Deal Analysis — %s, %s", a.Property.City, a.Property.State)
	}
	b.WriteString(cardTitleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(cardLabelStyle.Render("Loan terms"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Rate %s | Points %s | LTV %s of ARV\n", pct(a.Terms.InterestRate), pct(a.Terms.Points), pct(a.Terms.LTVARV))
	fmt.Fprintf(&b, "  Loan amount %s over %d months\n", money(a.Terms.LoanAmount), a.Terms.LoanTermMonths)

	b.WriteString(cardLabelStyle.Render("Financing costs"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Prepaid interest %s | Origination %s | Processing %s\n",
		money(a.FinancingCosts.PrepaidInterest), money(a.FinancingCosts.OriginationFees), money(a.FinancingCosts.ProcessingFees))
	fmt.Fprintf(&b, "  Total closing costs %s\n", money(a.FinancingCosts.TotalClosingCosts))

	b.WriteString(cardLabelStyle.Render("Sale and profit"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Sale %s | Project cost %s\n", money(a.SaleAndProfit.EstimatedSalePrice), money(a.SaleAndProfit.TotalProjectCost))
	fmt.Fprintf(&b, "  Gross profit %s | ROI %s\n", money(a.SaleAndProfit.GrossProfit), pct(a.SaleAndProfit.ROIPercent))

	bullets(&b, "Stipulations", a.Stipulations)
	bullets(&b, "Key risks", a.KeyRisks)

	fmt.Fprintf(&b, "\nVerdict: %s\n", verdictLine(a.Verdict.Rating))
	if a.Verdict.Summary != "" {
		b.WriteString(a.Verdict.Summary)
		b.WriteString("\n")
	}
	bullets(&b, "To improve", a.Verdict.Improvements)
	bullets(&b, "Next", a.FollowUpQuestions)
	return strings.TrimRight(b.String(), "\n")
}

func renderStressTest(r app.StressTestResult) string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Stress Test"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Base: profit %s, ROI %s (%s)\n",
		money(r.Base.SaleAndProfit.GrossProfit), pct(r.Base.SaleAndProfit.ROIPercent), r.Base.Verdict.Rating)
	fmt.Fprintf(&b, "Two extra months of interest: $%.2f\n\n", r.ExtraInterest2Mo)
	for _, s := range r.Scenarios {
		fmt.Fprintf(&b, "  %-12s profit %s, ROI %s — %s\n", s.Name, money(s.GrossProfit), pct(s.ROIPercent), s.Verdict)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderWorstCase(r app.WorstCaseResult) string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Worst Case"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Assumptions: ARV %s, rehab %s, hold +%d months\n",
		r.Assumptions.ARVChange, r.Assumptions.RehabChange, r.Assumptions.HoldExtensionMonths)
	fmt.Fprintf(&b, "Base case: profit %s, ROI %s\n", money(r.BaseCase.GrossProfit), pct(r.BaseCase.ROIPercent))
	fmt.Fprintf(&b, "Worst case: profit %s, ROI %s\n", money(r.WorstCase.GrossProfit), pct(r.WorstCase.ROIPercent))
	if len(r.DamageBreakdown) > 0 {
		b.WriteString(cardLabelStyle.Render("Damage breakdown"))
		b.WriteString("\n")
		for k, v := range r.DamageBreakdown {
			fmt.Fprintf(&b, "  %s: $%.2f\n", k, v)
		}
	}
	fmt.Fprintf(&b, "\nVerdict: %s — %s\n", verdictLine(r.Verdict.Rating), r.Verdict.Message)
	if r.Warning != "" {
		b.WriteString(r.Warning)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCityOpportunity(r app.CityOpportunityResult) string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render(fmt.Sprintf("Market: %s, %s — %s", r.City, r.State, r.OverallRating)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Fix & flip: %s | Buy & hold: %s\n", r.StrategyFit.FixAndFlip, r.StrategyFit.BuyAndHold)
	bullets(&b, "Market characteristics", r.MarketCharacteristics)
	bullets(&b, "Key risks", r.KeyRisks)
	bullets(&b, "What works here", r.WhatWorksHere)
	bullets(&b, "What to avoid", r.WhatToAvoid)
	if r.BottomLine != "" {
		b.WriteString("\n")
		b.WriteString(r.BottomLine)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderAPRRisk(r app.APRRiskResult) string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("True Cost of Capital"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Headline APR: %s\n", pct(r.HeadlineAPR))
	fmt.Fprintf(&b, "Base costs: interest %s + points %s = %s\n",
		money(r.BaseCosts.InterestPaid), money(r.BaseCosts.PointsCost), money(r.BaseCosts.TotalFinancingCost))
	fmt.Fprintf(&b, "Extension risk: %s/month; 3mo %s, 6mo %s\n",
		money(r.ExtensionRisk.MonthlyInterest), money(r.ExtensionRisk.ThreeMonth), money(r.ExtensionRisk.SixMonth))
	fmt.Fprintf(&b, "Default risk: rate %s; 90 days costs %s\n",
		pct(r.DefaultRisk.DefaultRate), money(r.DefaultRisk.NinetyDayCost))
	if r.Warning != "" {
		b.WriteString("\n")
		b.WriteString(r.Warning)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCashToClose(r app.CashToCloseResult) string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Cash to Close"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Loan amount: %s\n", money(r.LoanAmount))
	if len(r.Categories.FixedAdmin) > 0 {
		b.WriteString(cardLabelStyle.Render("Fixed admin"))
		b.WriteString("\n")
		for k, v := range r.Categories.FixedAdmin {
			fmt.Fprintf(&b, "  %s: $%.2f\n", k, v)
		}
	}
	fmt.Fprintf(&b, "Escrow and title admin: $%.2f\n", r.Categories.EscrowAndTitleAdmin.Subtotal)
	fmt.Fprintf(&b, "Title insurance (%s): %s\n", r.Categories.TitleInsurance.RateBasis, money(r.Categories.TitleInsurance.Amount))
	fmt.Fprintf(&b, "Recording fees: %s\n", money(r.Categories.RecordingFees.Estimated))
	fmt.Fprintf(&b, "\nTotal out of pocket: %s\n", money(r.TotalOutOfPocket))
	bullets(&b, "Excludes", r.Excludes)
	return strings.TrimRight(b.String(), "\n")
}

func renderHoldSensitivity(r app.HoldSensitivityResult) string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Hold Time Sensitivity"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Monthly burn: %s\n\n", money(r.MonthlyBurn))
	for _, s := range r.Scenarios {
		fmt.Fprintf(&b, "  %2d months: interest %s, net profit %s\n", s.HoldMonths, money(s.InterestCost), money(s.NetProfit))
	}
	if r.Warning != "" {
		b.WriteString("\n")
		b.WriteString(r.Warning)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderLenders(r app.LenderResults) string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render(fmt.Sprintf("Lenders — %s, %s", r.City, r.State)))
	b.WriteString("\n\n")
	for _, l := range r.Lenders {
		rating := "N/A"
		if l.Rating != nil {
			rating = fmt.Sprintf("%.1f", *l.Rating)
		}
		fmt.Fprintf(&b, "%s [%s] %s★ (%d reviews)\n", l.Name, l.Grade, rating, l.Reviews)
		fmt.Fprintf(&b, "  Rate %s | Points %s | LTV %s | %s\n",
			l.EstimatedTerms.Rate, l.EstimatedTerms.Points, l.EstimatedTerms.LTV, l.EstimatedTerms.Speed)
		if l.Summary != "" {
			fmt.Fprintf(&b, "  %s\n", l.Summary)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDSCR(r app.DSCRResult) string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("DSCR Refinance Check"))
	b.WriteString("\n\n")
	dscr := "N/A"
	if r.DSCR != nil {
		dscr = fmt.Sprintf("%.2f", *r.DSCR)
	}
	fmt.Fprintf(&b, "Status: %s | DSCR %s\n", r.Status, dscr)
	fmt.Fprintf(&b, "NOI %s | Debt service %s\n", money(r.EstimatedNOI), money(r.MonthlyDebtService))
	fmt.Fprintf(&b, "Max DSCR loan %s | Payoff %s\n", money(r.MaxDSCRLoan), money(r.ExistingLoanPayoff))
	fmt.Fprintf(&b, "Cash out %s | Short to close %s\n", money(r.CashOut), money(r.ShortToClose))
	if r.Overleveraged {
		b.WriteString(verdictBadStyle.Render("Overleveraged"))
		b.WriteString("\n")
	}
	if len(r.Assumptions) > 0 {
		b.WriteString(cardLabelStyle.Render("Assumptions"))
		b.WriteString("\n")
		for k, v := range r.Assumptions {
			fmt.Fprintf(&b, "  %s: %s\n", k, v)
		}
	}
	if r.Guidance != "" {
		b.WriteString("\n")
		b.WriteString(r.Guidance)
	}
	return strings.TrimRight(b.String(), "\n")
}
