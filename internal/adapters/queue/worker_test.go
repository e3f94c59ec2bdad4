package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/farum-router/internal/adapters/llm"
	"github.com/PabloGalante/farum-router/internal/app/classification"
	"github.com/PabloGalante/farum-router/internal/domain"
)

type recordingPublisher struct {
	published []*DirectiveMessage
	err       error
}

func (p *recordingPublisher) PublishDirectives(_ context.Context, msg *DirectiveMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func newTestWorker(pub DirectivePublisher, replies ...llm.MockReply) *Worker {
	gw := classification.NewGateway(llm.NewMockLLM(replies...), classification.GatewayConfig{
		Model:    "test-model",
		Preamble: llm.Preamble(),
		History:  llm.FewShotHistory(),
	})
	svc := classification.NewService(gw, domain.DefaultVocabulary(), classification.Options{MaxAttempts: 2})
	return NewWorker(svc, pub)
}

func TestProcessOutcomes(t *testing.T) {
	ok := func(context.Context, *UtteranceMessage) error { return nil }
	transient := func(context.Context, *UtteranceMessage) error { return errors.New("provider down") }
	permanent := func(context.Context, *UtteranceMessage) error { return ErrMalformed }

	tests := []struct {
		name        string
		body        string
		redelivered bool
		handler     Handler
		want        outcome
	}{
		{name: "handled", body: `{"request_id":"r1","text":"open chrome"}`, handler: ok, want: outcomeAck},
		{name: "handled after redelivery", body: `{"text":"open chrome"}`, redelivered: true, handler: ok, want: outcomeAck},
		{name: "invalid json", body: `{"text":`, handler: ok, want: outcomeReject},
		{name: "missing text", body: `{"request_id":"r1"}`, handler: ok, want: outcomeReject},
		{name: "handler failure requeues", body: `{"text":"open chrome"}`, handler: transient, want: outcomeRequeue},
		{name: "handler failure after redelivery rejects", body: `{"text":"open chrome"}`, redelivered: true, handler: transient, want: outcomeReject},
		{name: "handler malformed rejects", body: `{"text":"open chrome"}`, handler: permanent, want: outcomeReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, process(context.Background(), []byte(tt.body), tt.redelivered, tt.handler))
		})
	}
}

func TestWorkerPublishesDirectives(t *testing.T) {
	pub := &recordingPublisher{}
	w := newTestWorker(pub, llm.MockReply{Text: "open chrome, open firefox"})

	err := w.Handle(context.Background(), &UtteranceMessage{RequestID: "r1", Text: "open chrome and firefox"})
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	got := pub.published[0]
	assert.Equal(t, "r1", got.RequestID)
	assert.Equal(t, "open chrome and firefox", got.Utterance)
	assert.Equal(t, []string{"open chrome", "open firefox"}, got.Directives)
	assert.Equal(t, 1, got.Attempts)
	assert.Empty(t, got.Error)
}

func TestWorkerPublishesUnresolved(t *testing.T) {
	pub := &recordingPublisher{}
	w := newTestWorker(pub,
		llm.MockReply{Text: "general(query)"},
		llm.MockReply{Text: "general(query)"},
	)

	err := w.Handle(context.Background(), &UtteranceMessage{Text: "hmm"})
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	got := pub.published[0]
	assert.NotEmpty(t, got.RequestID, "request id is generated when missing")
	assert.Empty(t, got.Directives)
	assert.Equal(t, 2, got.Attempts)
	assert.NotEmpty(t, got.Error)
}

func TestWorkerReturnsProviderErrors(t *testing.T) {
	pub := &recordingPublisher{}
	w := newTestWorker(pub, llm.MockReply{Err: errors.New("timeout")})

	err := w.Handle(context.Background(), &UtteranceMessage{Text: "open chrome"})
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Empty(t, pub.published)

	body := []byte(`{"text":"open chrome"}`)
	assert.Equal(t, outcomeRequeue, process(context.Background(), body, false,
		newTestWorker(pub, llm.MockReply{Err: errors.New("timeout")}).Handle))
	assert.Equal(t, outcomeReject, process(context.Background(), body, true,
		newTestWorker(pub, llm.MockReply{Err: errors.New("quota exceeded")}).Handle))
}

func TestWorkerReturnsPublishErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker gone")}
	w := newTestWorker(pub)

	err := w.Handle(context.Background(), &UtteranceMessage{Text: "open chrome"})
	assert.EqualError(t, err, "broker gone")
}
