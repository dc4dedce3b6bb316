package polish

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatModel struct {
	calls int
	reply string
	err   error
}

func (s *stubChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func (s *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func TestPolishRewritesText(t *testing.T) {
	t.Parallel()
	cm := &stubChatModel{reply: "You're not alone, and I'm here with you."}
	p := NewModelPolisher(cm)

	got, err := p.Polish(context.Background(), "You're not alone.")
	require.NoError(t, err)
	assert.Equal(t, "You're not alone, and I'm here with you.", got)
	assert.Equal(t, 1, cm.calls)
}

func TestPolishDegradesToRawOnGatewayFailure(t *testing.T) {
	t.Parallel()
	cm := &stubChatModel{err: errors.New("gateway down")}
	p := NewModelPolisher(cm)

	got, err := p.Polish(context.Background(), "You're not alone.")
	require.Error(t, err)
	assert.Equal(t, "You're not alone.", got, "raw text must come back unchanged")
}

func TestPolishKeepsRawWhenModelReturnsNothing(t *testing.T) {
	t.Parallel()
	cm := &stubChatModel{reply: ""}
	p := NewModelPolisher(cm)

	got, err := p.Polish(context.Background(), "raw reply")
	require.NoError(t, err)
	assert.Equal(t, "raw reply", got)
}

func TestPolishCustomPrompt(t *testing.T) {
	t.Parallel()
	cm := &stubChatModel{reply: "done"}
	p := NewModelPolisher(cm, WithSystemPrompt("Trim to one sentence."))
	assert.Equal(t, "Trim to one sentence.", p.systemPrompt)
	_, err := p.Polish(context.Background(), "anything")
	require.NoError(t, err)
}
