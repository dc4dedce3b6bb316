package responder

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/encodelabs/careagent/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatModel struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
}

func (s *stubChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func (s *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()
	support := NewStaticResponder("support here")
	reg := NewRegistry(map[types.Intent]Responder{
		types.IntentSupport: support,
	})

	got, err := reg.Resolve(types.IntentSupport)
	require.NoError(t, err)
	assert.Same(t, support, got.(*StaticResponder))
}

func TestRegistryUnroutable(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(map[types.Intent]Responder{
		types.IntentSupport: NewStaticResponder("support here"),
	})

	_, err := reg.Resolve(types.IntentUnknown)
	assert.ErrorIs(t, err, ErrUnroutableIntent)

	// A known intent without a dedicated responder is unroutable too.
	_, err = reg.Resolve(types.IntentSolutions)
	assert.ErrorIs(t, err, ErrUnroutableIntent)
}

func TestRegistryFallback(t *testing.T) {
	t.Parallel()
	fallback := NewStaticResponder("let's figure this out together")
	reg := NewRegistry(nil, WithFallback(fallback))

	for _, in := range []types.Intent{types.IntentUnknown, types.IntentSupport, types.IntentOther} {
		got, err := reg.Resolve(in)
		require.NoError(t, err)
		assert.Same(t, fallback, got.(*StaticResponder))
	}
}

func TestModelResponderSingleCall(t *testing.T) {
	t.Parallel()
	cm := &stubChatModel{reply: "You're not alone."}
	r := NewModelResponder(cm, DefaultSupportSystemPrompt)

	reply, err := r.Respond(context.Background(), &Request{
		History: []*schema.Message{
			schema.AssistantMessage("How are you feeling?", nil),
		},
		Query:  "I feel anxious",
		Intent: types.IntentSupport,
	})
	require.NoError(t, err)
	assert.Equal(t, "You're not alone.", reply)
	assert.Equal(t, 1, cm.calls)
}

func TestModelResponderPropagatesModelError(t *testing.T) {
	t.Parallel()
	cm := &stubChatModel{err: errors.New("rate limited")}
	r := NewModelResponder(cm, DefaultSolutionsSystemPrompt)

	_, err := r.Respond(context.Background(), &Request{Query: "help me plan"})
	require.Error(t, err)
	assert.Equal(t, 1, cm.calls, "no internal retries")
}

func TestModelRegistryCoversRoutableIntents(t *testing.T) {
	t.Parallel()
	reg := NewModelRegistry(&stubChatModel{reply: "ok"})
	for _, in := range []types.Intent{types.IntentSupport, types.IntentSolutions, types.IntentOther} {
		_, err := reg.Resolve(in)
		assert.NoError(t, err, "intent %s", in)
	}
	_, err := reg.Resolve(types.IntentUnknown)
	assert.ErrorIs(t, err, ErrUnroutableIntent)
}
