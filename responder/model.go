package responder

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultSupportSystemPrompt drives the listening branch: acknowledge the
// feeling before anything else, no unsolicited advice.
const DefaultSupportSystemPrompt = `You are a warm, empathetic companion for students under exam pressure.

YOUR ROLE:
- Listen first. Reflect back what the user seems to be feeling.
- Validate the feeling without minimizing it or rushing to fix it.
- Offer advice only if the user explicitly asks for it.

STYLE:
- Gentle, conversational, no bullet points.
- Keep responses under 150 words. Always end with an open question or an invitation to share more.`

// DefaultSolutionsSystemPrompt drives the advice branch.
const DefaultSolutionsSystemPrompt = `You help students with concrete, practical study solutions.

YOUR ROLE:
- Turn the user's problem into one or two actionable suggestions.
- Structure learning material so it is easy to study and remember.
- Be specific: techniques, schedules, small next steps.

STYLE:
- Friendly and direct, no filler.
- Keep responses under 150 words. Always end with an engaging question or invitation to share more.`

// DefaultSmalltalkSystemPrompt handles greetings and chatter that carries no
// support or solutions goal yet.
const DefaultSmalltalkSystemPrompt = `You are a friendly companion for students preparing for exams.

The user is making small talk. Respond briefly and warmly, then steer the
conversation toward how they are doing with their studies: are they looking
to talk about how they feel, or looking for practical help? Keep it under 80
words.`

// ModelResponder generates a reply with a single chat-model call. The prompt
// is the system instruction, then the history window in chronological order,
// then the latest user text.
type ModelResponder struct {
	systemPrompt string
	chatModel    model.BaseChatModel
}

func NewModelResponder(chatModel model.BaseChatModel, systemPrompt string) *ModelResponder {
	return &ModelResponder{
		systemPrompt: systemPrompt,
		chatModel:    chatModel,
	}
}

func (r *ModelResponder) Respond(ctx context.Context, req *Request) (string, error) {
	messages := make([]*schema.Message, 0, len(req.History)+2)
	messages = append(messages, schema.SystemMessage(r.systemPrompt))
	for _, m := range req.History {
		if m == nil || m.Role == schema.System {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, schema.UserMessage(req.Query))

	response, err := r.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	return response.Content, nil
}

var _ Responder = (*ModelResponder)(nil)
