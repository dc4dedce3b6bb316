package agent

import (
	"github.com/cloudwego/eino/schema"
)

// appendMessage appends msg to history. Consecutive identical empty entries
// are dropped so a repeated blank turn can never pad the log.
func appendMessage(history []*schema.Message, msg *schema.Message) []*schema.Message {
	if msg == nil {
		return history
	}
	if msg.Content == "" && len(history) > 0 {
		last := history[len(history)-1]
		if last != nil && last.Role == msg.Role && last.Content == "" {
			return history
		}
	}
	return append(history, msg)
}

// lastPendingAssistantIndex reverse-scans for this turn's assistant entry:
// the most recent tool-less assistant message that appears after the latest
// user message. Returns -1 when the current turn has produced no assistant
// entry yet. This is the single replacement rule shared by the respond fold
// and the polish fold; see foldAssistantReply.
func lastPendingAssistantIndex(history []*schema.Message) int {
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User {
			return -1
		}
		if m.Role == schema.Assistant && len(m.ToolCalls) == 0 {
			return i
		}
	}
	return -1
}

// foldAssistantReply records content as the turn's assistant entry: it
// replaces the pending assistant entry in place when one exists, otherwise it
// appends a new one. Calling it twice in one turn (raw reply, then polished
// reply) therefore yields exactly one live assistant entry.
func foldAssistantReply(history []*schema.Message, content string) []*schema.Message {
	if i := lastPendingAssistantIndex(history); i >= 0 {
		history[i] = schema.AssistantMessage(content, nil)
		return history
	}
	return append(history, schema.AssistantMessage(content, nil))
}

// contextWindow returns up to n of the most recent entries, preserving
// chronological order. n <= 0 means no bound.
func contextWindow(history []*schema.Message, n int) []*schema.Message {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
