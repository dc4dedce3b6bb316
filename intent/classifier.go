package intent

import (
	"strings"

	"github.com/encodelabs/careagent/types"
)

// Classifier maps raw user text to a routing intent. Implementations must be
// pure and deterministic: no I/O, and the same input always yields the same
// intent.
type Classifier interface {
	Classify(text string) types.Intent
}

// LexicalClassifier detects intent from keyword cues. Solutions cues are
// checked before support cues so that an explicit ask for advice wins over an
// emotional disclosure in the same message.
type LexicalClassifier struct {
	SolutionsCues []string
	SupportCues   []string
	SmalltalkCues []string
}

func NewLexicalClassifier() *LexicalClassifier {
	return &LexicalClassifier{
		SolutionsCues: []string{
			"advice", "solution", "solutions", "how do i", "how can i",
			"what should i", "help me", "study plan", "explain", "tips",
			"recommend", "suggest", "prepare", "revise", "schedule",
		},
		SupportCues: []string{
			"i feel", "feeling", "anxious", "anxiety", "stressed", "stress",
			"sad", "worried", "worry", "overwhelmed", "scared", "afraid",
			"lonely", "depressed", "frustrated", "nervous", "upset",
			"can't sleep", "burned out", "burnt out",
		},
		SmalltalkCues: []string{
			"hi", "hello", "hey", "good morning", "good evening", "thanks",
			"thank you", "who are you", "what can you do",
		},
	}
}

func (c *LexicalClassifier) Classify(text string) types.Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return types.IntentUnknown
	}
	for _, cue := range c.SolutionsCues {
		if strings.Contains(normalized, cue) {
			return types.IntentSolutions
		}
	}
	for _, cue := range c.SupportCues {
		if strings.Contains(normalized, cue) {
			return types.IntentSupport
		}
	}
	for _, cue := range c.SmalltalkCues {
		if normalized == cue || strings.HasPrefix(normalized, cue+" ") ||
			strings.HasPrefix(normalized, cue+",") || strings.HasPrefix(normalized, cue+"!") {
			return types.IntentOther
		}
	}
	return types.IntentUnknown
}
