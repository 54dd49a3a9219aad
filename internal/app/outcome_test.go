package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeActionPayloadVariants(t *testing.T) {
	payload, err := decodeActionPayload(ActionStressTest, mockStressPayload)
	require.NoError(t, err)
	stress, ok := payload.(StressTestResult)
	require.True(t, ok)
	assert.Len(t, stress.Scenarios, 4)
	assert.InDelta(t, 8341.67, stress.ExtraInterest2Mo, 0.01)
	assert.Equal(t, "Rehab +10%", stress.Scenarios[0].Name)

	payload, err = decodeActionPayload(ActionRefiDSCR, mockDSCRPayload)
	require.NoError(t, err)
	dscr, ok := payload.(DSCRResult)
	require.True(t, ok)
	assert.Equal(t, "borderline", dscr.Status)
	require.NotNil(t, dscr.DSCR)
	assert.InDelta(t, 1.14, *dscr.DSCR, 0.001)
	assert.False(t, dscr.Overleveraged)

	payload, err = decodeActionPayload(ActionAPRRisk, mockAPRPayload)
	require.NoError(t, err)
	apr, ok := payload.(APRRiskResult)
	require.True(t, ok)
	require.NotNil(t, apr.ExtensionRisk.ThreeMonth)
	assert.InDelta(t, 12512.5, *apr.ExtensionRisk.ThreeMonth, 0.01)
	require.NotNil(t, apr.DefaultRisk.NinetyDayCost)
	assert.InDelta(t, 18200.0, *apr.DefaultRisk.NinetyDayCost, 0.01)

	payload, err = decodeActionPayload(ActionWorstCase, mockWorstCasePayload)
	require.NoError(t, err)
	worst, ok := payload.(WorstCaseResult)
	require.True(t, ok)
	assert.Equal(t, "Failing", worst.Verdict.Rating)
	assert.InDelta(t, 101074.17, worst.DamageBreakdown["total_profit_erosion"], 0.01)

	payload, err = decodeActionPayload(ActionCashToClose, mockCashToClosePayload)
	require.NoError(t, err)
	cash, ok := payload.(CashToCloseResult)
	require.True(t, ok)
	assert.InDelta(t, 2150.0, cash.Categories.FixedAdmin["subtotal"], 0.01)
	assert.False(t, cash.Categories.EscrowAndTitleAdmin.CapApplied)

	payload, err = decodeActionPayload(ActionHoldSensitivity, mockHoldPayload)
	require.NoError(t, err)
	hold, ok := payload.(HoldSensitivityResult)
	require.True(t, ok)
	require.Len(t, hold.Scenarios, 4)
	assert.Equal(t, 12, hold.Scenarios[3].HoldMonths)
}

func TestDecodeActionPayloadUnknownAction(t *testing.T) {
	_, err := decodeActionPayload(ActionKind("bogus"), []byte(`{}`))
	assert.Error(t, err)
}

func TestDecodeActionPayloadBadJSON(t *testing.T) {
	_, err := decodeActionPayload(ActionStressTest, []byte(`{`))
	assert.Error(t, err)
}

func TestDealAnalysisMissingNumbersStayNil(t *testing.T) {
	var analysis DealAnalysis
	payload, err := decodeActionPayload(ActionStressTest, []byte(`{"base":{},"scenarios":[{"name":"ARV -5%"}]}`))
	assert.NoError(t, err)
	stress := payload.(StressTestResult)
	analysis = stress.Base
	assert.Nil(t, analysis.Terms.InterestRate)
	assert.Nil(t, stress.Scenarios[0].ROIPercent)
}
