package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionRecord is one saved deal conversation, enough to resume it later.
type SessionRecord struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Title     string      `json:"title"`
	DealType  string      `json:"deal_type"`
	City      string      `json:"city"`
	Deal      DealContext `json:"deal"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// SessionStore persists deal sessions and transcripts as JSON on disk.
//
// Layout:
//
//	<root>/session/<userID>/current
//	<root>/session/<userID>/<sessionID>.json
//	<root>/message/<sessionID>/<msgID>.json
type SessionStore struct {
	Root string
}

func DefaultStorageRoot() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "flipbot", "storage")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "flipbot", "storage")
	}
	return filepath.Join(os.TempDir(), "flipbot", "storage")
}

func NewSessionStore(root string) *SessionStore {
	if strings.TrimSpace(root) == "" {
		root = DefaultStorageRoot()
	}
	return &SessionStore{Root: root}
}

func (s *SessionStore) sessionDir(userID string) string {
	return filepath.Join(s.Root, "session", userID)
}

func (s *SessionStore) messagesDir(sessionID string) string {
	return filepath.Join(s.Root, "message", sessionID)
}

func (s *SessionStore) sessionPath(userID, sessionID string) string {
	return filepath.Join(s.sessionDir(userID), sessionID+".json")
}

func (s *SessionStore) currentPath(userID string) string {
	return filepath.Join(s.sessionDir(userID), "current")
}

// CreateSession writes a new record for an analyzed deal and marks it current
// for the user.
func (s *SessionStore) CreateSession(userID string, deal DealContext) (*SessionRecord, error) {
	if strings.TrimSpace(userID) == "" {
		userID = "anonymous"
	}
	if err := os.MkdirAll(s.sessionDir(userID), 0o755); err != nil {
		return nil, err
	}

	now := time.Now()
	city, _ := ResolveLocation(deal)
	record := &SessionRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     BuildSessionTitle(deal),
		DealType:  normalizeDealType(stringField(deal, "transactionType")),
		City:      city,
		Deal:      deal.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.SaveSession(record); err != nil {
		return nil, err
	}
	if err := s.SetCurrentSession(userID, record.ID); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *SessionStore) SaveSession(record *SessionRecord) error {
	if record == nil || strings.TrimSpace(record.ID) == "" {
		return errors.New("missing session id")
	}
	record.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.sessionDir(record.UserID), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.sessionPath(record.UserID, record.ID), data, 0o644)
}

func (s *SessionStore) LoadSession(userID, sessionID string) (*SessionRecord, error) {
	data, err := os.ReadFile(s.sessionPath(userID, sessionID))
	if err != nil {
		return nil, err
	}
	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListSessions returns a user's saved sessions, newest first.
func (s *SessionStore) ListSessions(userID string) ([]SessionRecord, error) {
	entries, err := os.ReadDir(s.sessionDir(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var records []SessionRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		record, err := s.LoadSession(userID, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		records = append(records, *record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (s *SessionStore) SetCurrentSession(userID, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("missing session id")
	}
	if err := os.MkdirAll(s.sessionDir(userID), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.currentPath(userID), []byte(sessionID), 0o644)
}

func (s *SessionStore) CurrentSession(userID string) (string, error) {
	data, err := os.ReadFile(s.currentPath(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// AppendMessage persists one transcript entry.
func (s *SessionStore) AppendMessage(sessionID string, msg Message) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("missing session id")
	}
	dir := s.messagesDir(sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%020d.json", msg.ID)
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}

// SaveMessages writes a whole transcript, used to backfill when a session
// record is created mid-conversation.
func (s *SessionStore) SaveMessages(sessionID string, messages []Message) error {
	for _, msg := range messages {
		if err := s.AppendMessage(sessionID, msg); err != nil {
			return err
		}
	}
	return nil
}

// LoadMessages returns a session's transcript in insertion order.
func (s *SessionStore) LoadMessages(sessionID string) ([]Message, error) {
	entries, err := os.ReadDir(s.messagesDir(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var messages []Message
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.messagesDir(sessionID), entry.Name()))
		if err != nil {
			continue
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	return messages, nil
}

// BuildSessionTitle builds a label like "Austin · Purchase · $500,000".
// Missing parts are skipped; an empty deal falls back to "New Deal".
func BuildSessionTitle(deal DealContext) string {
	dealType := normalizeDealType(stringField(deal, "transactionType"))

	label := "Purchase"
	amount := stringField(deal, "purchasePrice")
	if dealType == "refinance" || dealType == "cash_out_refi" {
		label = "Refi"
		if owed := stringField(deal, "existingLoanBalance"); owed != "" {
			amount = owed
		}
	}

	city, _ := ResolveLocation(deal)
	formatted := formatAmount(amount)
	if city == "" && formatted == "" && stringField(deal, "transactionType") == "" {
		return "New Deal"
	}

	var parts []string
	if city != "" {
		parts = append(parts, city)
	}
	parts = append(parts, label)
	if formatted != "" {
		parts = append(parts, formatted)
	}
	return strings.Join(parts, " · ")
}

func normalizeDealType(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "purchase", "refinance", "cash_out_refi":
		return value
	}
	return "purchase"
}

// formatAmount renders "500000" as "$500,000"; unparseable input yields "".
func formatAmount(value string) string {
	value = CleanNumber(value)
	if value == "" {
		return ""
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return ""
	}
	n := int64(f)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "$" + b.String()
}
