package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UI modes the service attaches to chat-mode replies.
const (
	uiModeUpsell   = "UPSELL"
	uiModeCardDeal = "CARD_DEAL"
	uiModeChatDSCR = "CHAT_DSCR"
)

// AnalyzerClient talks to the remote deal analysis service. The service owns
// every financial computation; this client only moves deal contexts out and
// typed payloads back.
type AnalyzerClient struct {
	BaseURL string
	UserID  string
	HTTP    *http.Client

	mock *mockAnalyzer
}

func NewAnalyzerClient(baseURL, userID string, timeout time.Duration) *AnalyzerClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &AnalyzerClient{
		BaseURL: baseURL,
		UserID:  userID,
		HTTP:    &http.Client{Timeout: timeout},
	}
	// Mock mode serves canned responses for offline use and tests.
	if baseURL == "mock://" {
		client.mock = newMockAnalyzer()
	}
	return client
}

type analyzeRequest struct {
	Mode    string      `json:"mode,omitempty"`
	Action  ActionKind  `json:"action,omitempty"`
	Message string      `json:"message,omitempty"`
	Deal    DealContext `json:"deal"`
}

// serviceResponse is the union envelope every endpoint answers with. Which
// fields are populated depends on the mode; decode happens here, once.
type serviceResponse struct {
	UIMode       string          `json:"uiMode,omitempty"`
	PendingField string          `json:"pendingField,omitempty"`
	SessionID    string          `json:"sessionId,omitempty"`
	Complete     bool            `json:"complete,omitempty"`
	Field        string          `json:"field,omitempty"`
	Question     string          `json:"question,omitempty"`
	Options      []string        `json:"options,omitempty"`
	Response     json.RawMessage `json:"response,omitempty"`
}

// IntakeReply is the next-question-or-done branch of an intake round-trip.
type IntakeReply struct {
	Complete bool
	Field    string
	Question string
	Options  []string
	// Set when Complete: the computed analysis, typed for display and raw
	// for merging back into the deal context.
	Analysis    *DealAnalysis
	AnalysisRaw map[string]any
}

// ActionReply is one settled action round-trip.
type ActionReply struct {
	Action       ActionKind
	Upsell       bool
	PendingField string
	Prompt       string
	Payload      ActionPayload
}

// ChatReply is a free chat turn; the service may answer with plain text or
// promote the reply to a typed card.
type ChatReply struct {
	Text string
	Card *DealAnalysis
	DSCR *DSCRResult
}

// DealReply is the non-intake full-form submission result.
type DealReply struct {
	Upsell      bool
	SessionID   string
	Analysis    *DealAnalysis
	AnalysisRaw map[string]any
}

// Intake submits the accumulated answers so far and returns either the next
// question or the completed analysis.
func (c *AnalyzerClient) Intake(ctx context.Context, deal DealContext) (*IntakeReply, error) {
	req := analyzeRequest{Deal: c.withUser(deal)}
	var resp serviceResponse
	if c.mock != nil {
		resp = c.mock.intake(req)
	} else if err := c.post(ctx, "/api/intake", req, &resp); err != nil {
		return nil, err
	}

	if !resp.Complete {
		return &IntakeReply{Field: resp.Field, Question: resp.Question, Options: resp.Options}, nil
	}
	analysis, raw, err := decodeAnalysis(resp.Response)
	if err != nil {
		return nil, err
	}
	return &IntakeReply{Complete: true, Analysis: analysis, AnalysisRaw: raw}, nil
}

// RunAction issues one named action against a deal context.
func (c *AnalyzerClient) RunAction(ctx context.Context, action ActionKind, deal DealContext) (*ActionReply, error) {
	req := analyzeRequest{Mode: "action", Action: action, Deal: c.withUser(deal)}
	var resp serviceResponse
	if c.mock != nil {
		resp = c.mock.action(req)
	} else if err := c.post(ctx, "/api/chat", req, &resp); err != nil {
		return nil, err
	}

	if resp.UIMode == uiModeUpsell {
		return &ActionReply{Action: action, Upsell: true}, nil
	}
	if resp.PendingField != "" {
		var prompt string
		if err := json.Unmarshal(resp.Response, &prompt); err != nil {
			prompt = string(resp.Response)
		}
		return &ActionReply{Action: action, PendingField: resp.PendingField, Prompt: prompt}, nil
	}
	payload, err := decodeActionPayload(action, resp.Response)
	if err != nil {
		return nil, err
	}
	return &ActionReply{Action: action, Payload: payload}, nil
}

// Chat sends a free-text turn that matched no action.
func (c *AnalyzerClient) Chat(ctx context.Context, message string, deal DealContext) (*ChatReply, error) {
	req := analyzeRequest{Mode: "chat", Message: message, Deal: c.withUser(deal)}
	var resp serviceResponse
	if c.mock != nil {
		resp = c.mock.chat(req)
	} else if err := c.post(ctx, "/api/chat", req, &resp); err != nil {
		return nil, err
	}

	switch resp.UIMode {
	case uiModeCardDeal:
		analysis, _, err := decodeAnalysis(resp.Response)
		if err != nil {
			return nil, err
		}
		return &ChatReply{Card: analysis}, nil
	case uiModeChatDSCR:
		var dscr DSCRResult
		if err := json.Unmarshal(resp.Response, &dscr); err != nil {
			return nil, fmt.Errorf("decode dscr payload: %w", err)
		}
		return &ChatReply{DSCR: &dscr}, nil
	}
	var text string
	if err := json.Unmarshal(resp.Response, &text); err != nil {
		text = string(resp.Response)
	}
	return &ChatReply{Text: text}, nil
}

// SubmitDeal runs a full analysis from a complete form, bypassing intake.
func (c *AnalyzerClient) SubmitDeal(ctx context.Context, deal DealContext) (*DealReply, error) {
	req := analyzeRequest{Mode: "deal", Deal: c.withUser(deal)}
	var resp serviceResponse
	if c.mock != nil {
		resp = c.mock.deal(req)
	} else if err := c.post(ctx, "/api/chat", req, &resp); err != nil {
		return nil, err
	}

	if resp.UIMode == uiModeUpsell {
		return &DealReply{Upsell: true}, nil
	}
	analysis, raw, err := decodeAnalysis(resp.Response)
	if err != nil {
		return nil, err
	}
	return &DealReply{SessionID: resp.SessionID, Analysis: analysis, AnalysisRaw: raw}, nil
}

func (c *AnalyzerClient) withUser(deal DealContext) DealContext {
	out := deal.Clone()
	if out == nil {
		out = DealContext{}
	}
	if c.UserID != "" {
		out["userId"] = c.UserID
	}
	return out
}

func (c *AnalyzerClient) post(ctx context.Context, path string, body any, out *serviceResponse) error {
	if c.BaseURL == "" {
		return errors.New("analyzer base url is required")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(request)
	if err != nil {
		return fmt.Errorf("analyzer request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read analyzer response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var errResp struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(bodyBytes, &errResp)
		if errResp.Detail != "" {
			return fmt.Errorf("analyzer error: status %d: %s", resp.StatusCode, errResp.Detail)
		}
		if errResp.Message != "" {
			return fmt.Errorf("analyzer error: status %d: %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("analyzer error: status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("invalid analyzer response: %w", err)
	}
	return nil
}

// decodeAnalysis reads a deal analysis twice: typed for rendering and as a
// map for merging into the deal context.
func decodeAnalysis(raw json.RawMessage) (*DealAnalysis, map[string]any, error) {
	var analysis DealAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, nil, fmt.Errorf("decode analysis: %w", err)
	}
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil, nil, fmt.Errorf("decode analysis fields: %w", err)
	}
	return &analysis, asMap, nil
}
