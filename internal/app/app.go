package app

import (
	"time"

	"go.uber.org/zap"
)

// Application wires configuration, logging, the analyzer client, and session
// storage. One Application serves the whole process; each conversation gets
// its own SessionController.
type Application struct {
	Config Config
	Logger *zap.Logger
	Client *AnalyzerClient
	Store  *SessionStore
}

func NewApplication(cfg Config, mockMode bool) (*Application, error) {
	logger, err := NewLogger(cfg.LogLevel, "")
	if err != nil {
		return nil, err
	}

	baseURL := cfg.APIBaseURL
	if mockMode {
		baseURL = "mock://"
	}
	client := NewAnalyzerClient(baseURL, cfg.UserID, time.Duration(cfg.TimeoutSeconds)*time.Second)

	return &Application{
		Config: cfg,
		Logger: logger,
		Client: client,
		Store:  NewSessionStore(cfg.StorageRoot),
	}, nil
}

// NewSession starts a fresh conversation seeded with the greeting.
func (a *Application) NewSession() *SessionController {
	controller := NewSessionController(a.Client, a.Store, a.Logger, a.Config.UserID)
	if a.Config.Credits >= 0 {
		controller.SetCredits(a.Config.Credits)
	}
	return controller
}

// ResumeSession rebuilds a conversation from a stored deal session.
func (a *Application) ResumeSession(sessionID string) (*SessionController, error) {
	record, err := a.Store.LoadSession(a.Config.UserID, sessionID)
	if err != nil {
		return nil, err
	}
	messages, err := a.Store.LoadMessages(sessionID)
	if err != nil {
		return nil, err
	}
	controller := NewSessionController(a.Client, a.Store, a.Logger, a.Config.UserID)
	if a.Config.Credits >= 0 {
		controller.SetCredits(a.Config.Credits)
	}
	controller.restore(record, messages)
	return controller, nil
}

// ListSessions returns the user's saved deal sessions, newest first.
func (a *Application) ListSessions() ([]SessionRecord, error) {
	return a.Store.ListSessions(a.Config.UserID)
}

// Close flushes buffered log output.
func (a *Application) Close() {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}
