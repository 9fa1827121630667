package domain

import "time"

type ConversationID string
type MessageID string

type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

func (s Sender) Valid() bool {
	switch s {
	case SenderUser, SenderAgent:
		return true
	default:
		return false
	}
}

type Message struct {
	ID        MessageID
	Content   string
	Sender    Sender
	Timestamp time.Time
}

// Conversation is the message history between the user and one agent.
// Messages are kept in append order, which is also chronological order.
type Conversation struct {
	ID          ConversationID
	AgentID     AgentID
	Messages    []Message
	LastUpdated time.Time
}

func (c Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// Clone returns a copy whose message slice does not alias the receiver's.
func (c Conversation) Clone() Conversation {
	out := c
	if c.Messages != nil {
		out.Messages = make([]Message, len(c.Messages))
		copy(out.Messages, c.Messages)
	}
	return out
}
