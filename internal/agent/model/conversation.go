package model

import (
	"github.com/cloudwego/eino/schema"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Fixed assistant-authored texts. The engine never shows anything else on failure.
const (
	FallbackReply = "Sorry, I am unable to answer this question right now."
	ErrorReply    = "Assistant connection error or quota exceeded. Please try again later."
)

// ConversationTurn is one entry of a session transcript.
type ConversationTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

func UserTurn(text string) ConversationTurn {
	return ConversationTurn{Role: RoleUser, Text: text}
}

func AssistantTurn(text string) ConversationTurn {
	return ConversationTurn{Role: RoleAssistant, Text: text}
}

// ToMessage converts the turn into the Eino wire message.
func (t ConversationTurn) ToMessage() *schema.Message {
	if t.Role == RoleAssistant {
		return schema.AssistantMessage(t.Text, nil)
	}
	return schema.UserMessage(t.Text)
}

// ToMessages converts a transcript, preserving order.
func ToMessages(turns []ConversationTurn) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, t.ToMessage())
	}
	return msgs
}

// CloneTurns returns an independent copy of the transcript.
func CloneTurns(turns []ConversationTurn) []ConversationTurn {
	out := make([]ConversationTurn, len(turns))
	copy(out, turns)
	return out
}
