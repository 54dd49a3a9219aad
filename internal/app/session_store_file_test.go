package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSessionTitle(t *testing.T) {
	tests := []struct {
		name string
		deal DealContext
		want string
	}{
		{
			name: "purchase with city and price",
			deal: DealContext{"city": "Austin", "transactionType": "purchase", "purchasePrice": "500000"},
			want: "Austin · Purchase · $500,000",
		},
		{
			name: "refinance uses loan balance",
			deal: DealContext{"city": "Dallas", "transactionType": "refinance", "purchasePrice": "500000", "existingLoanBalance": "320000"},
			want: "Dallas · Refi · $320,000",
		},
		{
			name: "city from analysis property",
			deal: DealContext{
				"transactionType": "purchase",
				"purchasePrice":   "1250000",
				"analysis":        map[string]any{"property": map[string]any{"city": "Houston"}},
			},
			want: "Houston · Purchase · $1,250,000",
		},
		{
			name: "missing amount skipped",
			deal: DealContext{"city": "Austin", "transactionType": "purchase"},
			want: "Austin · Purchase",
		},
		{
			name: "empty deal",
			deal: DealContext{},
			want: "New Deal",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSessionTitle(tt.deal))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$500,000", formatAmount("500000"))
	assert.Equal(t, "$1,250,000", formatAmount("$1,250,000.75"))
	assert.Equal(t, "$900", formatAmount("900"))
	assert.Equal(t, "", formatAmount("not a number"))
	assert.Equal(t, "", formatAmount(""))
}

func TestSessionRoundTrip(t *testing.T) {
	store := NewSessionStore(t.TempDir())

	record, err := store.CreateSession("user-1", DealContext{
		"city":            "Austin",
		"transactionType": "purchase",
		"purchasePrice":   "500000",
	})
	require.NoError(t, err)
	require.NotEmpty(t, record.ID)

	loaded, err := store.LoadSession("user-1", record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Title, loaded.Title)
	assert.Equal(t, "Austin", loaded.City)
	assert.Equal(t, "purchase", loaded.DealType)
	assert.Equal(t, "500000", loaded.Deal["purchasePrice"])

	current, err := store.CurrentSession("user-1")
	require.NoError(t, err)
	assert.Equal(t, record.ID, current)
}

func TestListSessionsNewestFirst(t *testing.T) {
	store := NewSessionStore(t.TempDir())

	first, err := store.CreateSession("user-1", DealContext{"city": "Austin"})
	require.NoError(t, err)
	second, err := store.CreateSession("user-1", DealContext{"city": "Dallas"})
	require.NoError(t, err)
	// Force distinct ordering regardless of clock resolution.
	first.CreatedAt = second.CreatedAt.Add(-1e9)
	require.NoError(t, store.SaveSession(first))

	records, err := store.ListSessions("user-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)

	// Unknown user is empty, not an error.
	records, err = store.ListSessions("nobody")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMessagePersistenceOrder(t *testing.T) {
	store := NewSessionStore(t.TempDir())

	msgs := []Message{
		{ID: 100, Sender: SenderAssistant, Kind: KindText, Text: "greeting"},
		{ID: 101, Sender: SenderUser, Kind: KindText, Text: "hello"},
		{ID: 102, Sender: SenderAssistant, Kind: KindText, Text: "reply"},
	}
	require.NoError(t, store.SaveMessages("session-1", msgs))

	loaded, err := store.LoadMessages("session-1")
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "greeting", loaded[0].Text)
	assert.Equal(t, "hello", loaded[1].Text)
	assert.Equal(t, "reply", loaded[2].Text)

	// Missing session is empty, not an error.
	loaded, err = store.LoadMessages("missing")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
