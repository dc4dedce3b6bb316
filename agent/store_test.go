package agent

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/encodelabs/careagent/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUnknownConversationReturnsDefault(t *testing.T) {
	t.Parallel()
	store := NewMemoryStateStore()

	state, err := store.Load(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, "never-seen", state.ConversationID)
	assert.Equal(t, types.IntentUnknown, state.Intent)
	assert.Zero(t, state.TurnCount)
	assert.Empty(t, state.Messages)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStateStore()

	state := NewConversationState("c1")
	state.Intent = types.IntentSupport
	state.TurnCount = 2
	state.LastRawReply = "raw"
	state.Messages = appendMessage(state.Messages, schema.UserMessage("hello"))
	require.NoError(t, store.Save(ctx, "c1", state))

	loaded, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, types.IntentSupport, loaded.Intent)
	assert.Equal(t, 2, loaded.TurnCount)
	assert.Equal(t, "raw", loaded.LastRawReply)
	require.Len(t, loaded.Messages, 1)
	assert.Equal(t, "hello", loaded.Messages[0].Content)
}

func TestLoadReturnsIsolatedCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStateStore()

	state := NewConversationState("c1")
	state.Messages = appendMessage(state.Messages, schema.UserMessage("original"))
	require.NoError(t, store.Save(ctx, "c1", state))

	// Mutating a loaded copy must not leak into the stored snapshot until
	// Save; this is what makes mid-turn cancellation corruption-free.
	first, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	first.Messages = appendMessage(first.Messages, schema.UserMessage("abandoned turn"))
	first.TurnCount = 99

	second, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, second.Messages, 1)
	assert.Zero(t, second.TurnCount)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStateStore()

	state := NewConversationState("c1")
	state.TurnCount = 1
	require.NoError(t, store.Save(ctx, "c1", state))
	require.NoError(t, store.Delete(ctx, "c1"))

	loaded, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, loaded.TurnCount)
}
