package agent

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/encodelabs/careagent/types"
)

// ConversationState is everything the router persists per conversation.
// Messages is append-only except for the in-place replacement performed by
// foldAssistantReply; insertion order is chronological.
type ConversationState struct {
	ConversationID string            `json:"conversation_id"`
	Messages       []*schema.Message `json:"messages"`
	Intent         types.Intent      `json:"intent"`
	TurnCount      int               `json:"turn_count"`
	LastRawReply   string            `json:"last_raw_reply,omitempty"`
	Errors         []types.TurnError `json:"errors,omitempty"`
}

func NewConversationState(conversationID string) *ConversationState {
	return &ConversationState{
		ConversationID: conversationID,
		Intent:         types.IntentUnknown,
	}
}

// RecordError appends a recovered failure descriptor. Descriptors accumulate
// across turns and are never cleared by the router.
func (s *ConversationState) RecordError(stage string, err error) {
	s.Errors = append(s.Errors, types.NewTurnError(stage, err))
}

// cloneState deep-copies via the JSON codec so callers never alias the
// snapshot held by a cache backend.
func cloneState(s *ConversationState) (*ConversationState, error) {
	data, err := sonic.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode conversation state: %w", err)
	}
	var out ConversationState
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode conversation state: %w", err)
	}
	return &out, nil
}
