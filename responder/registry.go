package responder

import (
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/encodelabs/careagent/types"
)

// ErrUnroutableIntent is returned by Resolve when no responder covers the
// intent and no fallback is configured. The turn router recovers from it by
// asking a clarifying question instead of calling a responder.
var ErrUnroutableIntent = errors.New("no responder registered for intent")

// Registry maps intents to responders. It is populated at construction and
// read-only afterwards, so concurrent Resolve calls need no locking.
type Registry struct {
	byIntent map[types.Intent]Responder
	fallback Responder
}

type RegistryOption func(*Registry)

// WithFallback sets the responder used when an intent has no dedicated entry,
// including the unknown intent.
func WithFallback(r Responder) RegistryOption {
	return func(reg *Registry) {
		reg.fallback = r
	}
}

func NewRegistry(responders map[types.Intent]Responder, opts ...RegistryOption) *Registry {
	reg := &Registry{
		byIntent: make(map[types.Intent]Responder, len(responders)),
	}
	for intent, r := range responders {
		if r != nil {
			reg.byIntent[intent] = r
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(reg)
		}
	}
	return reg
}

// NewModelRegistry wires a model-backed responder for every routable intent.
func NewModelRegistry(chatModel model.BaseChatModel, opts ...RegistryOption) *Registry {
	return NewRegistry(map[types.Intent]Responder{
		types.IntentSupport:   NewModelResponder(chatModel, DefaultSupportSystemPrompt),
		types.IntentSolutions: NewModelResponder(chatModel, DefaultSolutionsSystemPrompt),
		types.IntentOther:     NewModelResponder(chatModel, DefaultSmalltalkSystemPrompt),
	}, opts...)
}

func (reg *Registry) Resolve(intent types.Intent) (Responder, error) {
	if intent.Known() {
		if r, ok := reg.byIntent[intent]; ok {
			return r, nil
		}
	}
	if reg.fallback != nil {
		return reg.fallback, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnroutableIntent, intent)
}
