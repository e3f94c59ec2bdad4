package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultInputQueue  = "utterances"
	DefaultOutputQueue = "directives"
)

// ErrMalformed marks a delivery that can never be processed.
var ErrMalformed = errors.New("malformed message")

// UtteranceMessage is what producers put on the input queue.
type UtteranceMessage struct {
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
}

// DirectiveMessage is published for the downstream dispatcher. Error is set
// when classification stayed unresolved.
type DirectiveMessage struct {
	RequestID  string   `json:"request_id"`
	Utterance  string   `json:"utterance"`
	Directives []string `json:"directives"`
	Attempts   int      `json:"attempts"`
	Error      string   `json:"error,omitempty"`
}

func decodeUtterance(body []byte) (*UtteranceMessage, error) {
	var msg UtteranceMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if strings.TrimSpace(msg.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", ErrMalformed)
	}
	return &msg, nil
}
