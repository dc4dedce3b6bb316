package responder

import "context"

// StaticResponder returns a fixed reply without calling any model. Useful as
// a registry fallback and in tests.
type StaticResponder struct {
	Reply string
}

func NewStaticResponder(reply string) *StaticResponder {
	return &StaticResponder{Reply: reply}
}

func (r *StaticResponder) Respond(ctx context.Context, req *Request) (string, error) {
	return r.Reply, nil
}

var _ Responder = (*StaticResponder)(nil)
