package domain

import "context"

// GenParams are pass-through generation knobs. No validation beyond
// range sanity happens downstream; providers ignore knobs they do not
// support (the OpenAI-compatible chat API has no top_k, for example).
type GenParams struct {
	MaxLength   int
	DoSample    bool
	Temperature float32
	TopP        float32
	TopK        int
}

// Generator produces text from a grounding prompt. Exactly one output
// sequence is requested per call; the call may be nondeterministic when
// sampling is enabled.
type Generator interface {
	Generate(ctx context.Context, prompt string, p GenParams) (string, error)
}
