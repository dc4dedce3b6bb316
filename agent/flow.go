package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/encodelabs/careagent/intent"
	"github.com/encodelabs/careagent/polish"
	"github.com/encodelabs/careagent/responder"
	"github.com/encodelabs/careagent/types"
	"github.com/google/uuid"
)

// turnPhase tracks where a turn is in its lifecycle. Phases advance strictly
// forward; errored is the recovery phase reachable from any middle phase.
type turnPhase string

const (
	phaseIdle        turnPhase = "idle"
	phaseClassifying turnPhase = "classifying"
	phaseRouting     turnPhase = "routing"
	phaseResponding  turnPhase = "responding"
	phaseFolding     turnPhase = "folding"
	phaseDone        turnPhase = "done"
	phaseErrored     turnPhase = "errored"
)

const (
	// DefaultGreeting opens a new session before any intent is known.
	DefaultGreeting = "Hi, I'm glad you're here. Exam season can be a lot. How are you feeling today?"

	// DefaultClarifyingPrompt is returned when intent cannot be resolved and
	// no fallback responder is configured.
	DefaultClarifyingPrompt = "Would you like to talk about how you're feeling, or are you looking for some solutions or advice?"

	// DefaultFallbackReply stands in for a responder that failed; the turn
	// still completes with it.
	DefaultFallbackReply = "I'm sorry, I had trouble putting a response together just now. I'm still here. Could you tell me a little more?"
)

// DefaultContextWindow bounds how many prior entries responders see.
const DefaultContextWindow = 20

// ChatFlow is the turn router: it classifies the incoming message, selects a
// responder, folds the reply into conversation history, polishes it, and
// persists the updated state. One ChatFlow serves any number of
// conversations; turns within a conversation are serialized, distinct
// conversations run in parallel.
type ChatFlow struct {
	classifier intent.Classifier
	registry   *responder.Registry
	polisher   polish.Polisher
	store      *StateStore

	window          int
	gatewayTimeout  time.Duration
	greeting        string
	clarifyingReply string
	fallbackReply   string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type FlowOption func(*ChatFlow)

// WithClassifier replaces the default lexical classifier.
func WithClassifier(c intent.Classifier) FlowOption {
	return func(f *ChatFlow) { f.classifier = c }
}

// WithContextWindow bounds the history window passed to responders.
func WithContextWindow(n int) FlowOption {
	return func(f *ChatFlow) { f.window = n }
}

// WithGatewayTimeout bounds each chat-model call. Zero disables the bound.
func WithGatewayTimeout(d time.Duration) FlowOption {
	return func(f *ChatFlow) { f.gatewayTimeout = d }
}

// WithGreeting overrides the session-start greeting.
func WithGreeting(s string) FlowOption {
	return func(f *ChatFlow) { f.greeting = s }
}

// WithClarifyingPrompt overrides the unroutable-intent reply.
func WithClarifyingPrompt(s string) FlowOption {
	return func(f *ChatFlow) { f.clarifyingReply = s }
}

// WithFallbackReply overrides the responder-failure reply.
func WithFallbackReply(s string) FlowOption {
	return func(f *ChatFlow) { f.fallbackReply = s }
}

func NewChatFlow(registry *responder.Registry, polisher polish.Polisher, store *StateStore, opts ...FlowOption) (*ChatFlow, error) {
	if registry == nil {
		return nil, errors.New("responder registry is required")
	}
	if polisher == nil {
		return nil, errors.New("polisher is required")
	}
	if store == nil {
		store = NewMemoryStateStore()
	}
	f := &ChatFlow{
		classifier:      intent.NewLexicalClassifier(),
		registry:        registry,
		polisher:        polisher,
		store:           store,
		window:          DefaultContextWindow,
		greeting:        DefaultGreeting,
		clarifyingReply: DefaultClarifyingPrompt,
		fallbackReply:   DefaultFallbackReply,
		locks:           map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// NewModelChatFlow wires a registry of model-backed responders and a model
// polisher around a single chat model.
func NewModelChatFlow(chatModel model.BaseChatModel, store *StateStore, opts ...FlowOption) (*ChatFlow, error) {
	return NewChatFlow(
		responder.NewModelRegistry(chatModel),
		polish.NewModelPolisher(chatModel),
		store,
		opts...,
	)
}

// lock serializes turns per conversation; distinct conversations do not
// contend.
func (f *ChatFlow) lock(conversationID string) func() {
	f.mu.Lock()
	l, ok := f.locks[conversationID]
	if !ok {
		l = &sync.Mutex{}
		f.locks[conversationID] = l
	}
	f.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (f *ChatFlow) gatewayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.gatewayTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, f.gatewayTimeout)
}

// StartSession opens (or resumes) a conversation and returns its ID together
// with a greeting. A new conversation gets a generated ID, the greeting
// folded into its history, and TurnCount 0.
func (f *ChatFlow) StartSession(ctx context.Context, conversationID string) (string, string, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	unlock := f.lock(conversationID)
	defer unlock()

	state, err := f.store.Load(ctx, conversationID)
	if err != nil {
		return conversationID, "", err
	}
	if len(state.Messages) == 0 {
		state.Messages = appendMessage(state.Messages, schema.AssistantMessage(f.greeting, nil))
		if err := f.store.Save(ctx, conversationID, state); err != nil {
			return conversationID, f.greeting, err
		}
	}
	slog.Debug("session started", "conversation", conversationID, "turns", state.TurnCount)
	return conversationID, f.greeting, nil
}

// ProcessTurn runs one complete turn. The returned reply is always usable
// when err is nil or a save failure: persistence errors are reported, but the
// in-memory result is still handed back so the caller can decide whether to
// warn the user that state may not carry over.
func (f *ChatFlow) ProcessTurn(ctx context.Context, conversationID, userText string) (string, error) {
	if conversationID == "" {
		return "", errors.New("conversation id is required")
	}
	unlock := f.lock(conversationID)
	defer unlock()

	state, err := f.store.Load(ctx, conversationID)
	if err != nil {
		return "", err
	}

	step := func(p turnPhase) {
		slog.Debug("turn phase", "conversation", conversationID, "phase", p)
	}
	step(phaseIdle)

	// Zero-input transitions: session start gets the greeting, any later
	// empty message is a no-op turn that replays the last known reply.
	if strings.TrimSpace(userText) == "" {
		if len(state.Messages) == 0 {
			state.Messages = appendMessage(state.Messages, schema.AssistantMessage(f.greeting, nil))
			return f.greeting, f.save(ctx, conversationID, state)
		}
		slog.Debug("no-op turn", "conversation", conversationID)
		reply := state.LastRawReply
		if reply == "" {
			if i := lastPendingAssistantIndex(state.Messages); i >= 0 {
				reply = state.Messages[i].Content
			}
		}
		return reply, nil
	}

	step(phaseClassifying)
	state.Messages = appendMessage(state.Messages, schema.UserMessage(userText))
	if state.Intent == types.IntentUnknown {
		if detected := f.classifier.Classify(userText); detected != types.IntentUnknown {
			state.Intent = detected
			slog.Debug("intent resolved", "conversation", conversationID, "intent", detected)
		}
	}

	step(phaseRouting)
	rsp, err := f.registry.Resolve(state.Intent)
	if err != nil {
		// Recovered: ask for clarification instead of calling a responder.
		step(phaseErrored)
		slog.Warn("unroutable intent", "conversation", conversationID, "intent", state.Intent)
		state.RecordError("routing", err)
		state.Messages = foldAssistantReply(state.Messages, f.clarifyingReply)
		return f.clarifyingReply, f.save(ctx, conversationID, state)
	}

	step(phaseResponding)
	req := &responder.Request{
		History: contextWindow(state.Messages[:len(state.Messages)-1], f.window),
		Query:   userText,
		Intent:  state.Intent,
	}
	callCtx, cancel := f.gatewayContext(ctx)
	raw, rErr := rsp.Respond(callCtx, req)
	cancel()
	if rErr != nil {
		if ctx.Err() != nil {
			// Caller cancelled mid-gateway-call. Nothing was persisted, so a
			// retry starts from the pre-turn state without duplicate entries.
			return "", ctx.Err()
		}
		// Recovered: the turn still completes with a safe fallback, which
		// needs no polishing pass.
		step(phaseErrored)
		slog.Warn("responder failed", "conversation", conversationID, "err", rErr)
		state.RecordError("respond", rErr)
		state.LastRawReply = f.fallbackReply
		state.Messages = foldAssistantReply(state.Messages, f.fallbackReply)
		state.TurnCount++
		return f.fallbackReply, f.save(ctx, conversationID, state)
	}

	step(phaseFolding)
	state.LastRawReply = raw
	state.Messages = foldAssistantReply(state.Messages, raw)

	callCtx, cancel = f.gatewayContext(ctx)
	polished, pErr := f.polisher.Polish(callCtx, raw)
	cancel()
	if pErr != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Degraded, not failed: polished already carries the raw text.
		slog.Warn("polish degraded", "conversation", conversationID, "err", pErr)
		state.RecordError("polish", pErr)
	}
	state.Messages = foldAssistantReply(state.Messages, polished)
	state.TurnCount++

	step(phaseDone)
	return polished, f.save(ctx, conversationID, state)
}

func (f *ChatFlow) save(ctx context.Context, conversationID string, state *ConversationState) error {
	if err := f.store.Save(ctx, conversationID, state); err != nil {
		slog.Warn("persist failed", "conversation", conversationID, "err", err)
		return fmt.Errorf("conversation %s not persisted: %w", conversationID, err)
	}
	return nil
}
