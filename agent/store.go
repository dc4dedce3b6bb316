package agent

import (
	"context"
	"fmt"
)

const stateNamespace = "careagent:conversation"

// StateStore loads and saves per-conversation state over a Cache backend.
// Load never fails on a missing conversation: it returns a fresh default
// state instead. Both Load and Save work on deep copies, so in-flight turn
// mutations only become visible once Save succeeds.
type StateStore struct {
	core Cache[*ConversationState]
}

func NewStateStore(core Cache[*ConversationState]) *StateStore {
	return &StateStore{core: core}
}

func NewMemoryStateStore() *StateStore {
	return NewStateStore(NewMemoryCache[*ConversationState]())
}

func stateKey(conversationID string) string {
	return stateNamespace + ":" + conversationID
}

func (s *StateStore) Load(ctx context.Context, conversationID string) (*ConversationState, error) {
	state, ok, err := s.core.Get(ctx, stateKey(conversationID))
	if err != nil {
		return nil, fmt.Errorf("load conversation %q: %w", conversationID, err)
	}
	if !ok || state == nil {
		return NewConversationState(conversationID), nil
	}
	return cloneState(state)
}

func (s *StateStore) Save(ctx context.Context, conversationID string, state *ConversationState) error {
	snapshot, err := cloneState(state)
	if err != nil {
		return err
	}
	if err := s.core.Set(ctx, stateKey(conversationID), snapshot); err != nil {
		return fmt.Errorf("save conversation %q: %w", conversationID, err)
	}
	return nil
}

// Delete removes a conversation. The router never calls this; retention is a
// store-level policy.
func (s *StateStore) Delete(ctx context.Context, conversationID string) error {
	return s.core.Del(ctx, stateKey(conversationID))
}
