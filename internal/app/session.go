package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrBusy rejects a submission while a round-trip is outstanding. The UI
	// disables inputs too, but this flag is the authoritative guard.
	ErrBusy = errors.New("a request is already in flight")
	// ErrIncompleteDeal rejects a form submission missing required fields.
	ErrIncompleteDeal = errors.New("purchase price, arv, and loan program are required")
)

// Guard texts surfaced without a network call.
const (
	msgNeedDeal          = "Please analyze a deal first."
	msgNeedDealWorstCase = "I need to analyze the deal first before running a worst-case scenario."
	msgNeedDealCash      = "I need to analyze the deal first before calculating cash to close."
	msgNeedDealHold      = "I need to analyze the deal first to run a hold-time sensitivity."
	msgWhichCity         = "Which city would you like me to analyze?"
	msgWhatCity          = "What city is the property in?"
	msgIntakeFailed      = "I couldn't process that answer. Please try again."
)

// TurnResult tells the caller what to do after a turn settles. RedirectUpgrade
// means the usage quota is exhausted and the user must be sent to the
// upgrade flow; it is never shown as an in-transcript error.
type TurnResult struct {
	RedirectUpgrade bool
}

// SessionController owns all per-conversation state: the deal context, the
// intake sequencer, the pending-field request, and the conversation log. One
// controller per conversation; independent sessions never share state.
type SessionController struct {
	mu sync.Mutex

	client *AnalyzerClient
	store  *SessionStore
	logger *zap.Logger
	userID string

	log           *conversationLog
	deal          DealContext
	intake        IntakeState
	pendingField  string
	pendingAction ActionKind
	activeAction  ActionKind
	busy          bool

	// credits is the known remaining-usage counter; nil means unknown and
	// does not block dispatch.
	credits *int

	// generation tags every round-trip at issue time. StartNewDeal bumps it,
	// so a slow response for a discarded deal can be detected and dropped
	// instead of corrupting the new session.
	generation int

	storeSessionID string
}

func NewSessionController(client *AnalyzerClient, store *SessionStore, logger *zap.Logger, userID string) *SessionController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionController{
		client: client,
		store:  store,
		logger: logger,
		userID: userID,
		log:    newConversationLog(),
	}
}

// Messages returns a snapshot of the transcript in display order.
func (s *SessionController) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.snapshot()
}

func (s *SessionController) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *SessionController) HasDeal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deal != nil
}

// Deal returns a copy of the current deal context, nil before analysis.
func (s *SessionController) Deal() DealContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deal.Clone()
}

func (s *SessionController) IntakeActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intake.Active
}

func (s *SessionController) PendingField() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingField
}

// ActiveAction names the in-flight action so the UI can mark that control
// busy. Empty when no action round-trip is outstanding.
func (s *SessionController) ActiveAction() ActionKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeAction
}

// SetCredits records the remaining-usage counter reported by the caller's
// profile. Pass a nil pointer via ClearCredits when the counter is unknown.
func (s *SessionController) SetCredits(remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits = &remaining
}

func (s *SessionController) ClearCredits() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits = nil
}

// StartNewDeal clears the deal context, the pending field, and the intake
// state, and resets the transcript to the initial greeting. Any round-trip
// still in flight is orphaned: its generation no longer matches and its
// response will be discarded on arrival.
func (s *SessionController) StartNewDeal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.deal = nil
	s.pendingField = ""
	s.pendingAction = ""
	s.intake = IntakeState{}
	s.storeSessionID = ""
	s.log.reset()
}

// HandleInput processes one free-text submission. Routing priority: a
// pending field intercepts everything, then an active intake consumes the
// answer, then the intent classifier decides, and anything unmatched becomes
// a generic chat turn.
func (s *SessionController) HandleInput(ctx context.Context, text string) (TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TurnResult{}, nil
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return TurnResult{}, ErrBusy
	}
	s.appendLocked(Message{Sender: SenderUser, Kind: KindText, Text: text})

	if s.pendingField != "" {
		field, action := s.pendingField, s.pendingAction
		s.pendingField = ""
		s.pendingAction = ""
		s.deal = MergeDealContext(s.deal, DealContext{field: NormalizeFieldValue(field, text)})
		return s.dispatchLocked(ctx, action, s.deal.Clone())
	}

	if s.intake.Active && s.intake.Current != nil {
		s.intake.answer(text)
		return s.submitIntakeLocked(ctx)
	}

	intent, kind := Classify(text, s.deal != nil, s.intake.Active)
	switch intent {
	case IntentDeal:
		s.intake.start()
		return s.submitIntakeLocked(ctx)
	case IntentAction:
		return s.routeActionLocked(ctx, kind)
	default:
		return s.chatLocked(ctx, text)
	}
}

// RunAction dispatches a named action from a non-textual trigger (the UI's
// action bar). The same preconditions and busy rules apply.
func (s *SessionController) RunAction(ctx context.Context, kind ActionKind) (TurnResult, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return TurnResult{}, ErrBusy
	}
	return s.routeActionLocked(ctx, kind)
}

// routeActionLocked applies per-action preconditions, then dispatches.
// Preconditions are local synchronous checks, never round-trips.
func (s *SessionController) routeActionLocked(ctx context.Context, kind ActionKind) (TurnResult, error) {
	switch kind {
	case ActionCityOpportunity:
		city, state := ResolveLocation(s.deal)
		if city == "" {
			s.appendLocked(Message{Sender: SenderAssistant, Kind: KindText, Text: msgWhichCity})
			s.mu.Unlock()
			return TurnResult{}, nil
		}
		return s.dispatchLocked(ctx, kind, DealContext{"city": city, "state": state})
	case ActionFindLenders:
		if s.deal == nil {
			s.appendLocked(Message{Sender: SenderAssistant, Kind: KindText, Text: msgNeedDeal})
			s.mu.Unlock()
			return TurnResult{}, nil
		}
		city, state := ResolveLocation(s.deal)
		if city == "" {
			s.appendLocked(Message{Sender: SenderAssistant, Kind: KindText, Text: msgWhatCity})
			s.mu.Unlock()
			return TurnResult{}, nil
		}
		return s.dispatchLocked(ctx, kind, MergeDealContext(s.deal, DealContext{"city": city, "state": state}))
	case ActionWorstCase:
		if s.deal == nil {
			s.appendLocked(Message{Sender: SenderAssistant, Kind: KindText, Text: msgNeedDealWorstCase})
			s.mu.Unlock()
			return TurnResult{}, nil
		}
	case ActionCashToClose:
		if s.deal == nil {
			s.appendLocked(Message{Sender: SenderAssistant, Kind: KindText, Text: msgNeedDealCash})
			s.mu.Unlock()
			return TurnResult{}, nil
		}
	case ActionHoldSensitivity:
		if s.deal == nil {
			s.appendLocked(Message{Sender: SenderAssistant, Kind: KindText, Text: msgNeedDealHold})
			s.mu.Unlock()
			return TurnResult{}, nil
		}
	default:
		if s.deal == nil {
			s.appendLocked(Message{Sender: SenderAssistant, Kind: KindText, Text: msgNeedDeal})
			s.mu.Unlock()
			return TurnResult{}, nil
		}
	}
	return s.dispatchLocked(ctx, kind, s.deal.Clone())
}

// dispatchLocked issues one action round-trip. Called with the mutex held;
// releases it for the network call and reacquires to apply the response.
// The busy flag is always cleared when the round-trip settles, success or
// failure.
func (s *SessionController) dispatchLocked(ctx context.Context, kind ActionKind, deal DealContext) (TurnResult, error) {
	if s.credits != nil && *s.credits <= 0 {
		s.mu.Unlock()
		return TurnResult{RedirectUpgrade: true}, nil
	}
	s.busy = true
	s.activeAction = kind
	gen := s.generation
	s.mu.Unlock()

	reply, err := s.client.RunAction(ctx, kind, deal)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.activeAction = ""

	if gen != s.generation {
		s.logger.Info("discarding stale action response", zap.String("action", string(kind)))
		return TurnResult{}, nil
	}
	if err != nil {
		// Non-fatal: the session stays usable, the transcript gets nothing.
		s.logger.Error("action dispatch failed", zap.String("action", string(kind)), zap.Error(err))
		return TurnResult{}, nil
	}
	if reply.Upsell {
		return TurnResult{RedirectUpgrade: true}, nil
	}
	if reply.PendingField != "" {
		s.pendingField = reply.PendingField
		s.pendingAction = kind
		s.appendLocked(Message{Sender: SenderAssistant, Kind: KindText, Text: reply.Prompt})
		return TurnResult{}, nil
	}
	s.appendLocked(Message{Sender: SenderAssistant, Kind: KindResult, Action: kind, Payload: reply.Payload})
	return TurnResult{}, nil
}

// submitIntakeLocked sends the accumulated answers and applies either the
// next question or the completed analysis. Called with the mutex held.
func (s *SessionController) submitIntakeLocked(ctx context.Context) (TurnResult, error) {
	s.busy = true
	gen := s.generation
	collected := s.intake.Collected.Clone()
	s.mu.Unlock()

	reply, err := s.client.Intake(ctx, collected)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if gen != s.generation {
		s.logger.Info("discarding stale intake response")
		return TurnResult{}, nil
	}
	if err != nil {
		s.logger.Error("intake round-trip failed", zap.Error(err))
		s.appendLocked(Message{Sender: SenderAssistant, Kind: KindText, Text: msgIntakeFailed})
		return TurnResult{}, nil
	}

	if !reply.Complete {
		s.intake.Current = &Question{Field: reply.Field, Question: reply.Question, Options: reply.Options}
		s.appendLocked(Message{Sender: SenderAssistant, Kind: KindText, Text: reply.Question})
		return TurnResult{}, nil
	}

	s.intake.stop()
	s.adoptAnalysisLocked(s.intake.Collected, reply.AnalysisRaw)
	s.appendLocked(Message{Sender: SenderAssistant, Kind: KindCard, Payload: *reply.Analysis})
	s.persistSessionLocked()
	return TurnResult{}, nil
}

// SubmitDeal runs a full analysis from a complete form, bypassing intake.
func (s *SessionController) SubmitDeal(ctx context.Context, form DealContext) (TurnResult, error) {
	if missingString(form, "purchasePrice") || missingString(form, "arv") || missingString(form, "loanProgram") {
		return TurnResult{}, ErrIncompleteDeal
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return TurnResult{}, ErrBusy
	}
	s.appendLocked(Message{Sender: SenderUser, Kind: KindText, Text: describeDealForm(form)})
	if s.credits != nil && *s.credits <= 0 {
		s.mu.Unlock()
		return TurnResult{RedirectUpgrade: true}, nil
	}
	s.busy = true
	gen := s.generation
	s.mu.Unlock()

	reply, err := s.client.SubmitDeal(ctx, form.Clone())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if gen != s.generation {
		s.logger.Info("discarding stale deal response")
		return TurnResult{}, nil
	}
	if err != nil {
		s.logger.Error("deal submission failed", zap.Error(err))
		s.appendLocked(Message{Sender: SenderAssistant, Kind: KindText, Text: "I couldn't analyze the deal. Make sure the analysis service is reachable."})
		return TurnResult{}, nil
	}
	if reply.Upsell {
		return TurnResult{RedirectUpgrade: true}, nil
	}

	s.adoptAnalysisLocked(form, reply.AnalysisRaw)
	s.appendLocked(Message{Sender: SenderAssistant, Kind: KindCard, Payload: *reply.Analysis})
	s.persistSessionLocked()
	return TurnResult{}, nil
}

// chatLocked forwards an unclassified turn to the service's chat mode.
func (s *SessionController) chatLocked(ctx context.Context, text string) (TurnResult, error) {
	s.busy = true
	gen := s.generation
	deal := s.deal.Clone()
	s.mu.Unlock()

	reply, err := s.client.Chat(ctx, text, deal)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if gen != s.generation {
		s.logger.Info("discarding stale chat response")
		return TurnResult{}, nil
	}
	if err != nil {
		s.logger.Error("chat turn failed", zap.Error(err))
		return TurnResult{}, nil
	}
	switch {
	case reply.Card != nil:
		s.appendLocked(Message{Sender: SenderAssistant, Kind: KindCard, Payload: *reply.Card})
	case reply.DSCR != nil:
		s.appendLocked(Message{Sender: SenderAssistant, Kind: KindResult, Action: ActionRefiDSCR, Payload: *reply.DSCR})
	default:
		s.appendLocked(Message{Sender: SenderAssistant, Kind: KindText, Text: reply.Text})
	}
	return TurnResult{}, nil
}

// adoptAnalysisLocked merges a completed analysis into the deal context.
// Analysis fields win on key collision; the whole payload is also kept under
// "analysis" so location can fall back to the last result's property
// fragment. City and state are resolved eagerly so follow-up actions that
// need location see flat fields.
func (s *SessionController) adoptAnalysisLocked(base DealContext, analysisRaw map[string]any) {
	merged := MergeDealContext(base, analysisRaw)
	merged["analysis"] = map[string]any(analysisRaw)
	city, state := ResolveLocation(merged)
	if city != "" {
		merged["city"] = city
	}
	if state != "" {
		merged["state"] = state
	}
	s.deal = merged
}

// appendLocked adds to the transcript and mirrors the message to the store
// once a persisted session exists.
func (s *SessionController) appendLocked(msg Message) {
	appended := s.log.append(msg)
	if s.store != nil && s.storeSessionID != "" {
		if err := s.store.AppendMessage(s.storeSessionID, appended); err != nil {
			s.logger.Error("failed to persist message", zap.Error(err))
		}
	}
}

// persistSessionLocked creates the saved-session record the first time a
// deal completes analysis, then backfills the transcript so the
// conversation can be resumed later.
func (s *SessionController) persistSessionLocked() {
	if s.store == nil || s.storeSessionID != "" {
		return
	}
	record, err := s.store.CreateSession(s.userID, s.deal)
	if err != nil {
		s.logger.Error("failed to create deal session", zap.Error(err))
		return
	}
	s.storeSessionID = record.ID
	if err := s.store.SaveMessages(record.ID, s.log.snapshot()); err != nil {
		s.logger.Error("failed to persist transcript", zap.Error(err))
	}
}

// describeDealForm renders the user-visible summary line for a form
// submission.
func describeDealForm(form DealContext) string {
	part := func(field, label string) string {
		v := stringField(form, field)
		if v == "" {
			return label + ": N/A"
		}
		return label + ": " + v
	}
	return strings.Join([]string{
		"Analyze this fix & flip deal:",
		part("address", "- Address"),
		part("purchasePrice", "- Purchase"),
		part("rehabBudget", "- Rehab"),
		part("arv", "- ARV"),
		part("loanProgram", "- Loan program"),
		part("experienceLevel", "- Experience"),
	}, "\n")
}

// restore rebuilds controller state from a stored session so a conversation
// can continue where it left off.
func (s *SessionController) restore(record *SessionRecord, messages []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeSessionID = record.ID
	s.deal = record.Deal.Clone()
	s.log.messages = messages
	for _, m := range messages {
		if m.ID > s.log.lastID {
			s.log.lastID = m.ID
		}
	}
}
