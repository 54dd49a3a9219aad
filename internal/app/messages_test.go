package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationLogIDsMonotonic(t *testing.T) {
	log := newConversationLog()

	// Appends within the same millisecond must still get increasing IDs.
	var prev int64
	for i := 0; i < 20; i++ {
		msg := log.appendText(SenderUser, "turn")
		assert.Greater(t, msg.ID, prev)
		prev = msg.ID
	}
}

func TestConversationLogKinds(t *testing.T) {
	log := newConversationLog()

	result := log.appendResult(ActionStressTest, StressTestResult{})
	assert.Equal(t, KindResult, result.Kind)
	assert.Equal(t, ActionStressTest, result.Action)

	card := log.appendCard(DealAnalysis{})
	assert.Equal(t, KindCard, card.Kind)
	assert.Equal(t, SenderAssistant, card.Sender)
	assert.False(t, card.Time.IsZero())
}

func TestConversationLogReset(t *testing.T) {
	log := newConversationLog()
	log.appendText(SenderUser, "hello")
	log.appendText(SenderAssistant, "hi")

	log.reset()

	messages := log.snapshot()
	require.Len(t, messages, 1)
	assert.Equal(t, greetingText, messages[0].Text)

	// snapshot is a copy, not the backing slice
	messages[0].Text = "mutated"
	assert.Equal(t, greetingText, log.snapshot()[0].Text)
}
