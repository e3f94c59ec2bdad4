package domain

import (
	"context"
	"fmt"
	"iter"
)

// LLMClient defines how the core application talks to a generative model.
// The returned sequence yields text fragments in arrival order; a non-nil
// error ends the stream.
type LLMClient interface {
	StreamClassification(ctx context.Context, req ClassificationRequest) iter.Seq2[string, error]
}

// ClassificationRequest is everything sent to the model for one attempt.
type ClassificationRequest struct {
	Model       string
	Utterance   string
	Temperature float32

	// Preamble is the system-level instruction, kept apart from History.
	Preamble string
	History  []Exchange

	// Truncate must stay false: the whole preamble has to reach the model.
	Truncate bool
	// Connectors must stay empty: answers are grounded on the history only.
	Connectors []string
}

// Validate rejects requests that providers must not send.
func (r ClassificationRequest) Validate() error {
	if r.Truncate {
		return fmt.Errorf("%w: truncation is not allowed", ErrUnsupportedRequest)
	}
	if len(r.Connectors) > 0 {
		return fmt.Errorf("%w: connectors %v are not allowed", ErrUnsupportedRequest, r.Connectors)
	}
	return nil
}

// UtteranceLog is an append-only diagnostic record of received utterances.
// It is never read back into classification requests.
type UtteranceLog interface {
	Append(ctx context.Context, entry *UtteranceEntry) error
	Recent(ctx context.Context, limit int) ([]*UtteranceEntry, error)
}
