package responder

import (
	"context"

	"github.com/cloudwego/eino/schema"
	"github.com/encodelabs/careagent/types"
)

// Request is the read-only projection of a conversation handed to a
// responder. History is a bounded window of prior entries in chronological
// order (oldest first); Query is the latest user text and is not repeated in
// History. Every responder sees the same projection so prompts cannot drift
// between routing branches.
type Request struct {
	History []*schema.Message
	Query   string
	Intent  types.Intent
}

// Responder produces raw reply text for one turn. An implementation makes at
// most one chat-model call per invocation and never retries internally;
// retry policy belongs to the turn router.
type Responder interface {
	Respond(ctx context.Context, req *Request) (string, error)
}
