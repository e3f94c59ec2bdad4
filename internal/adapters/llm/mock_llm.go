package llm

import (
	"context"
	"iter"
	"strings"
	"sync"

	"github.com/PabloGalante/farum-router/internal/domain"
)

// MockReply is one scripted model answer. A non-nil Err breaks the stream
// after Text has been emitted.
type MockReply struct {
	Text string
	Err  error
}

// MockLLM is an offline LLMClient. Scripted replies are served first, in
// order; once they run out it falls back to simple keyword heuristics.
type MockLLM struct {
	mu      sync.Mutex
	replies []MockReply
	calls   []domain.ClassificationRequest
}

func NewMockLLM(replies ...MockReply) *MockLLM {
	return &MockLLM{replies: replies}
}

// Calls returns the requests received so far.
func (m *MockLLM) Calls() []domain.ClassificationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.ClassificationRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockLLM) StreamClassification(
	ctx context.Context,
	req domain.ClassificationRequest,
) iter.Seq2[string, error] {
	if err := req.Validate(); err != nil {
		return func(yield func(string, error) bool) {
			yield("", err)
		}
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	var reply MockReply
	if len(m.replies) > 0 {
		reply = m.replies[0]
		m.replies = m.replies[1:]
	} else {
		reply = MockReply{Text: guessDirectives(req.Utterance)}
	}
	m.mu.Unlock()

	return func(yield func(string, error) bool) {
		// word-sized fragments, like a real stream
		for _, frag := range strings.SplitAfter(reply.Text, " ") {
			if frag == "" {
				continue
			}
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(frag, nil) {
				return
			}
		}
		if reply.Err != nil {
			yield("", reply.Err)
		}
	}
}

var realtimeHints = []string{"weather", "news", "today", "latest", "current", "price", "score", "who won"}

func guessDirectives(utterance string) string {
	text := strings.ToLower(strings.TrimSpace(utterance))
	text = strings.TrimRight(text, ".!?")
	if text == "" {
		return ""
	}

	var (
		out  []string
		verb string
	)
	for _, part := range strings.Split(text, " and ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		d := guessOne(part)
		// "open chrome and firefox": a lone name reuses the previous verb
		if strings.HasPrefix(d, "general ") && verb != "" && !strings.Contains(part, " ") {
			d = verb + " " + part
		}
		verb = carriedVerb(d)
		out = append(out, d)
	}
	return strings.Join(out, ", ")
}

func carriedVerb(directive string) string {
	for _, v := range []domain.Keyword{domain.KeywordOpen, domain.KeywordClose, domain.KeywordPlay} {
		if strings.HasPrefix(directive, string(v)+" ") {
			return string(v)
		}
	}
	return ""
}

func guessOne(part string) string {
	switch {
	case strings.HasPrefix(part, "bye"), part == "exit", part == "goodbye":
		return string(domain.KeywordExit)
	case strings.HasPrefix(part, "open "):
		return "open " + strings.TrimPrefix(part, "open ")
	case strings.HasPrefix(part, "close "):
		return "close " + strings.TrimPrefix(part, "close ")
	case strings.HasPrefix(part, "play "):
		return "play " + strings.TrimPrefix(part, "play ")
	case strings.HasPrefix(part, "generate image"), strings.HasPrefix(part, "draw "):
		return "generate image " + strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(part, "generate image"), "draw "))
	case strings.HasPrefix(part, "mute"), strings.HasPrefix(part, "unmute"), strings.HasPrefix(part, "volume"):
		return "system " + part
	case strings.HasPrefix(part, "write "):
		return "content " + strings.TrimPrefix(part, "write ")
	case strings.HasPrefix(part, "remind"), strings.HasPrefix(part, "set a reminder"):
		return "reminder " + part
	case strings.HasPrefix(part, "search ") && strings.HasSuffix(part, " on youtube"):
		return "youtube search " + strings.TrimSuffix(strings.TrimPrefix(part, "search "), " on youtube")
	case strings.HasPrefix(part, "search "), strings.HasPrefix(part, "google "):
		return "google search " + strings.TrimPrefix(strings.TrimPrefix(part, "search "), "google ")
	}

	for _, h := range realtimeHints {
		if strings.Contains(part, h) {
			return "realtime " + part
		}
	}
	return "general " + part
}
