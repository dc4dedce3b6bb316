package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
)

type conversationIDContext struct{}

// WithConversationID routes adk runs to a specific conversation.
func WithConversationID(ctx context.Context, conversationID string) context.Context {
	return context.WithValue(ctx, conversationIDContext{}, conversationID)
}

// ConversationIDFromContext returns the conversation set by
// WithConversationID.
func ConversationIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(conversationIDContext{})
	if value == nil {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}

var _ adk.Agent = (*Agent)(nil)

// Agent exposes a ChatFlow as an eino adk agent so it can run under
// adk.NewRunner alongside other agents. The conversation is taken from the
// context (WithConversationID); the turn input is the last message.
type Agent struct {
	name        string
	description string
	flow        *ChatFlow
}

func NewAgent(name, description string, flow *ChatFlow) *Agent {
	return &Agent{
		name:        name,
		description: description,
		flow:        flow,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		conversationID, ok := ConversationIDFromContext(ctx)
		if !ok || conversationID == "" {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no conversation id in context"),
			})
			return
		}
		userText := ""
		if len(input.Messages) > 0 {
			userText = input.Messages[len(input.Messages)-1].Content
		}
		reply, err := a.flow.ProcessTurn(ctx, conversationID, userText)
		if err != nil && reply == "" {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("process turn failed: %w", err),
			})
			return
		}
		gen.Send(&adk.AgentEvent{
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message: &schema.Message{
						Role:    schema.Assistant,
						Content: reply,
					},
					Role: schema.Assistant,
				},
			},
		})
	}()
	return iter
}
