package app

import (
	"time"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

type MessageKind string

const (
	// KindText is a plain conversational turn.
	KindText MessageKind = "text"
	// KindResult carries a typed action payload; Action names the variant.
	KindResult MessageKind = "result"
	// KindCard carries a full deal analysis.
	KindCard MessageKind = "card"
)

// Message is one entry of the append-only conversation log. Messages are
// never mutated after creation; insertion order is display order.
type Message struct {
	ID      int64       `json:"id"`
	Sender  Sender      `json:"sender"`
	Kind    MessageKind `json:"kind"`
	Text    string      `json:"text,omitempty"`
	Action  ActionKind  `json:"action,omitempty"`
	Payload any         `json:"payload,omitempty"`
	Time    time.Time   `json:"time"`
}

const greetingText = "Share your fix & flip deal. I'll estimate loan terms (rate, points, LTV) and projected profit, then tell you if it looks like a good deal."

// conversationLog owns message IDs. IDs are UnixMilli-based but strictly
// increasing even when two appends land in the same millisecond.
type conversationLog struct {
	messages []Message
	lastID   int64
}

func newConversationLog() *conversationLog {
	log := &conversationLog{}
	log.reset()
	return log
}

func (l *conversationLog) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id
	return id
}

func (l *conversationLog) append(msg Message) Message {
	msg.ID = l.nextID()
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}
	l.messages = append(l.messages, msg)
	return msg
}

func (l *conversationLog) appendText(sender Sender, text string) Message {
	return l.append(Message{Sender: sender, Kind: KindText, Text: text})
}

func (l *conversationLog) appendResult(action ActionKind, payload any) Message {
	return l.append(Message{Sender: SenderAssistant, Kind: KindResult, Action: action, Payload: payload})
}

func (l *conversationLog) appendCard(payload any) Message {
	return l.append(Message{Sender: SenderAssistant, Kind: KindCard, Payload: payload})
}

// reset drops the transcript back to the initial greeting.
func (l *conversationLog) reset() {
	l.messages = nil
	l.append(Message{Sender: SenderAssistant, Kind: KindText, Text: greetingText})
}

func (l *conversationLog) snapshot() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}
