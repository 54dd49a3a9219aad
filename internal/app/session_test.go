package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestController(t *testing.T) *SessionController {
	t.Helper()
	client := NewAnalyzerClient("mock://", "user-1", time.Second)
	store := NewSessionStore(t.TempDir())
	return NewSessionController(client, store, zaptest.NewLogger(t), "user-1")
}

func lastMessage(t *testing.T, s *SessionController) Message {
	t.Helper()
	messages := s.Messages()
	require.NotEmpty(t, messages)
	return messages[len(messages)-1]
}

func TestNewControllerStartsWithGreeting(t *testing.T) {
	s := newTestController(t)
	messages := s.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, SenderAssistant, messages[0].Sender)
	assert.Contains(t, messages[0].Text, "fix & flip")
	assert.False(t, s.HasDeal())
	assert.False(t, s.Busy())
}

func TestGuidedIntakeThroughAnalysis(t *testing.T) {
	s := newTestController(t)
	ctx := context.Background()

	_, err := s.HandleInput(ctx, "I have a deal for you")
	require.NoError(t, err)
	require.True(t, s.IntakeActive())
	assert.Contains(t, lastMessage(t, s).Text, "loan program")

	answers := []string{
		"fix_and_flip", // loanProgram
		"purchase",     // transactionType
		"$500,000",     // purchasePrice
		"0",            // existingLoanBalance
		"123 Main St",  // address
		"Austin",       // city
		"650,000",      // arv
		"75000",        // rehabBudget
		"30000",        // interestReserves
		"720",          // creditScore
		"10+",          // experienceLevel
	}
	for _, answer := range answers {
		_, err := s.HandleInput(ctx, answer)
		require.NoError(t, err)
	}

	assert.False(t, s.IntakeActive())
	require.True(t, s.HasDeal())

	final := lastMessage(t, s)
	assert.Equal(t, KindCard, final.Kind)
	analysis, ok := final.Payload.(DealAnalysis)
	require.True(t, ok)
	assert.Equal(t, "Austin", analysis.Property.City)

	// Numeric answers were cleaned, experience bucketed.
	deal := s.Deal()
	assert.Equal(t, "500000", deal["purchasePrice"])
	assert.Equal(t, "650000", deal["arv"])
	assert.Equal(t, "intermediate", deal["experienceLevel"])
	assert.Equal(t, "Austin", deal["city"])
}

func TestScenarioActionAfterAnalysis(t *testing.T) {
	s := newTestController(t)
	ctx := context.Background()

	_, err := s.SubmitDeal(ctx, DealContext{
		"purchasePrice": "500000",
		"arv":           "650000",
		"loanProgram":   "fix_and_flip",
	})
	require.NoError(t, err)
	require.True(t, s.HasDeal())

	_, err = s.HandleInput(ctx, "find me a lender")
	require.NoError(t, err)

	final := lastMessage(t, s)
	require.Equal(t, KindResult, final.Kind)
	assert.Equal(t, ActionFindLenders, final.Action)
	lenders, ok := final.Payload.(LenderResults)
	require.True(t, ok)
	// Location comes from the adopted analysis payload.
	assert.Equal(t, "Austin", lenders.City)
	assert.Equal(t, "TX", lenders.State)
	assert.NotEmpty(t, lenders.Lenders)
}

func TestActionGuardsWithoutDeal(t *testing.T) {
	s := newTestController(t)
	ctx := context.Background()

	tests := []struct {
		kind ActionKind
		want string
	}{
		{ActionWorstCase, msgNeedDealWorstCase},
		{ActionCashToClose, msgNeedDealCash},
		{ActionHoldSensitivity, msgNeedDealHold},
		{ActionFindLenders, msgNeedDeal},
		{ActionStressTest, msgNeedDeal},
		{ActionCityOpportunity, msgWhichCity},
	}
	for _, tt := range tests {
		result, err := s.RunAction(ctx, tt.kind)
		require.NoError(t, err)
		assert.False(t, result.RedirectUpgrade)
		assert.Equal(t, tt.want, lastMessage(t, s).Text, "action %s", tt.kind)
		assert.False(t, s.Busy())
	}
}

func TestPendingFieldInterceptsAndRetries(t *testing.T) {
	s := newTestController(t)
	ctx := context.Background()

	_, err := s.SubmitDeal(ctx, DealContext{
		"purchasePrice": "500000",
		"arv":           "650000",
		"loanProgram":   "fix_and_flip",
	})
	require.NoError(t, err)

	// DSCR needs monthly rent; the mock asks for it.
	_, err = s.RunAction(ctx, ActionRefiDSCR)
	require.NoError(t, err)
	assert.Equal(t, "monthlyRent", s.PendingField())
	assert.Contains(t, lastMessage(t, s).Text, "monthly rent")

	// The reply is intercepted even though "stress" would otherwise classify.
	_, err = s.HandleInput(ctx, "2,500")
	require.NoError(t, err)
	assert.Empty(t, s.PendingField())

	final := lastMessage(t, s)
	require.Equal(t, KindResult, final.Kind)
	assert.Equal(t, ActionRefiDSCR, final.Action)
	assert.Equal(t, "2500", s.Deal()["monthlyRent"])
}

func TestCreditsGateDispatch(t *testing.T) {
	s := newTestController(t)
	ctx := context.Background()

	_, err := s.SubmitDeal(ctx, DealContext{
		"purchasePrice": "500000",
		"arv":           "650000",
		"loanProgram":   "fix_and_flip",
	})
	require.NoError(t, err)

	s.SetCredits(0)
	before := len(s.Messages())
	result, err := s.RunAction(ctx, ActionStressTest)
	require.NoError(t, err)
	assert.True(t, result.RedirectUpgrade)
	// Nothing hit the transcript and the controller is not stuck busy.
	assert.Len(t, s.Messages(), before)
	assert.False(t, s.Busy())

	s.SetCredits(3)
	result, err = s.RunAction(ctx, ActionStressTest)
	require.NoError(t, err)
	assert.False(t, result.RedirectUpgrade)
	assert.Equal(t, ActionStressTest, lastMessage(t, s).Action)

	s.ClearCredits()
	result, err = s.RunAction(ctx, ActionStressTest)
	require.NoError(t, err)
	assert.False(t, result.RedirectUpgrade)
}

func TestSubmitDealValidation(t *testing.T) {
	s := newTestController(t)
	_, err := s.SubmitDeal(context.Background(), DealContext{"purchasePrice": "500000"})
	assert.ErrorIs(t, err, ErrIncompleteDeal)
}

func TestStartNewDealResetsEverything(t *testing.T) {
	s := newTestController(t)
	ctx := context.Background()

	_, err := s.SubmitDeal(ctx, DealContext{
		"purchasePrice": "500000",
		"arv":           "650000",
		"loanProgram":   "fix_and_flip",
	})
	require.NoError(t, err)
	_, err = s.RunAction(ctx, ActionRefiDSCR)
	require.NoError(t, err)
	require.NotEmpty(t, s.PendingField())

	s.StartNewDeal()

	assert.False(t, s.HasDeal())
	assert.Empty(t, s.PendingField())
	assert.False(t, s.IntakeActive())
	messages := s.Messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Text, "fix & flip")
}

func TestUnmatchedInputFallsThroughToChat(t *testing.T) {
	s := newTestController(t)
	_, err := s.HandleInput(context.Background(), "tell me a joke")
	require.NoError(t, err)
	final := lastMessage(t, s)
	assert.Equal(t, KindText, final.Kind)
	assert.Contains(t, final.Text, "real estate")
}

func TestAnalysisCompletionPersistsSession(t *testing.T) {
	client := NewAnalyzerClient("mock://", "user-1", time.Second)
	store := NewSessionStore(t.TempDir())
	s := NewSessionController(client, store, zaptest.NewLogger(t), "user-1")

	_, err := s.SubmitDeal(context.Background(), DealContext{
		"purchasePrice":   "500000",
		"arv":             "650000",
		"loanProgram":     "fix_and_flip",
		"transactionType": "purchase",
		"city":            "Austin",
	})
	require.NoError(t, err)

	records, err := store.ListSessions("user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Austin · Purchase · $500,000", records[0].Title)

	messages, err := store.LoadMessages(records[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, messages)
}

func TestBusyRejectsAndStaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "late reply"})
	}))
	defer server.Close()

	client := NewAnalyzerClient(server.URL, "user-1", 30*time.Second)
	s := NewSessionController(client, NewSessionStore(t.TempDir()), zaptest.NewLogger(t), "user-1")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.HandleInput(context.Background(), "tell me something")
	}()

	require.Eventually(t, s.Busy, time.Second, 5*time.Millisecond)

	_, err := s.HandleInput(context.Background(), "second input")
	assert.ErrorIs(t, err, ErrBusy)

	// Discard the deal while the first round-trip is still in flight.
	s.StartNewDeal()
	close(release)
	<-done

	// The late reply must not leak into the fresh transcript.
	messages := s.Messages()
	require.Len(t, messages, 1)
	assert.NotContains(t, messages[0].Text, "late reply")
	assert.False(t, s.Busy())
}
