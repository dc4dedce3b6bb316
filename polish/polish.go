package polish

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultSystemPrompt is the fixed instruction for the final formatting pass.
const DefaultSystemPrompt = `You are the final response formatter for a student support chatbot.

Your job:
1. Ensure the response flows naturally and conversationally
2. Add appropriate warmth (but don't overdo it)
3. Make sure there's an invitation to continue (question or open statement)
4. Keep it concise but complete
5. Remove any awkward phrasing

Just output the polished response, nothing else. Keep under 200 words.`

// Polisher refines raw responder output into the final user-facing text.
// Polishing is best-effort: the returned string is always usable. A non-nil
// error means polishing degraded and the raw text came back unchanged.
type Polisher interface {
	Polish(ctx context.Context, raw string) (string, error)
}

// ModelPolisher runs one chat-model call per Polish invocation.
type ModelPolisher struct {
	systemPrompt string
	chatModel    model.BaseChatModel
}

type Option func(*ModelPolisher)

// WithSystemPrompt overrides the default polishing instruction.
func WithSystemPrompt(prompt string) Option {
	return func(p *ModelPolisher) {
		p.systemPrompt = prompt
	}
}

func NewModelPolisher(chatModel model.BaseChatModel, opts ...Option) *ModelPolisher {
	p := &ModelPolisher{
		systemPrompt: DefaultSystemPrompt,
		chatModel:    chatModel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *ModelPolisher) Polish(ctx context.Context, raw string) (string, error) {
	response, err := p.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(p.systemPrompt),
		schema.UserMessage(fmt.Sprintf("Polish this response:\n\n%s", raw)),
	})
	if err != nil {
		return raw, fmt.Errorf("polish degraded: %w", err)
	}
	if response.Content == "" {
		return raw, nil
	}
	return response.Content, nil
}

var _ Polisher = (*ModelPolisher)(nil)
