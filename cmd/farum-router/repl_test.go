package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/farum-router/internal/adapters/llm"
	"github.com/PabloGalante/farum-router/internal/app/classification"
	"github.com/PabloGalante/farum-router/internal/domain"
)

func newTestService(replies ...llm.MockReply) *classification.Service {
	gw := classification.NewGateway(llm.NewMockLLM(replies...), classification.GatewayConfig{
		Model:    "test-model",
		Preamble: llm.Preamble(),
		History:  llm.FewShotHistory(),
	})
	return classification.NewService(gw, domain.DefaultVocabulary(), classification.Options{MaxAttempts: 2})
}

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestReplLoopStopsOnExit(t *testing.T) {
	svc := newTestService(
		llm.MockReply{Text: "open chrome, open firefox"},
		llm.MockReply{Text: "exit"},
		llm.MockReply{Text: "general never read"},
	)
	in := strings.NewReader("open chrome and firefox\n\nbye\nhow are you?\n")
	var out bytes.Buffer

	require.NoError(t, replLoop(context.Background(), svc, in, &out))

	got := out.String()
	assert.Contains(t, got, "open chrome\n")
	assert.Contains(t, got, "open firefox\n")
	assert.Contains(t, got, "exit \n")
	assert.NotContains(t, got, "never read")
	assert.True(t, strings.HasPrefix(got, prompt))
}

func TestReplLoopReportsFailuresAndContinues(t *testing.T) {
	svc := newTestService(
		llm.MockReply{Text: "general(query)"},
		llm.MockReply{Text: "general(query)"},
		llm.MockReply{Err: errors.New("quota exceeded")},
		llm.MockReply{Text: "nothing useful"},
	)
	in := strings.NewReader("hmm\nopen chrome\nasdf\n")
	var out bytes.Buffer

	require.NoError(t, replLoop(context.Background(), svc, in, &out), "EOF ends the loop")

	got := out.String()
	assert.Contains(t, got, "could not resolve that after 2 attempts")
	assert.Contains(t, got, "quota exceeded")
	assert.Contains(t, got, "no directives recognized")
}

func TestClassifyOnce(t *testing.T) {
	svc := newTestService(llm.MockReply{Text: "open chrome, general tell me about mahatma gandhi."})
	var out bytes.Buffer

	require.NoError(t, classifyOnce(context.Background(), svc, "open chrome and tell me about mahatma gandhi.", &out))

	var got classifyOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, []string{"open chrome", "general tell me about mahatma gandhi."}, got.Directives)
	assert.Equal(t, 1, got.Attempts)
}

func TestClassifyOnceUnresolved(t *testing.T) {
	svc := newTestService(llm.MockReply{Text: "general(query)"}, llm.MockReply{Text: "general(query)"})
	var out bytes.Buffer

	err := classifyOnce(context.Background(), svc, "hmm", &out)
	assert.ErrorIs(t, err, domain.ErrUnresolved)
	assert.Empty(t, out.String())
}

func TestReplLoopReturnsWhenCancelledWhileWaitingForInput(t *testing.T) {
	svc := newTestService()
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- replLoop(ctx, svc, pr, io.Discard)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("replLoop still blocked after ctx was cancelled")
	}
}

func TestReplLoopReturnsScanErrors(t *testing.T) {
	svc := newTestService()
	pr, pw := io.Pipe()
	boom := errors.New("tty gone")
	pw.CloseWithError(boom)

	err := replLoop(context.Background(), svc, pr, io.Discard)
	assert.ErrorIs(t, err, boom)
}
