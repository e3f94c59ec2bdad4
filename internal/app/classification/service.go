package classification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/farum-router/internal/domain"
	"github.com/PabloGalante/farum-router/internal/observability"
)

const DefaultMaxAttempts = 5

// Service is the classification entry point: gateway call, normalization,
// and a bounded retry while the model leaves the sentinel in its answer.
// It holds no mutable state of its own and is safe for concurrent use.
type Service struct {
	gateway     *Gateway
	vocab       domain.Vocabulary
	maxAttempts int
	utterances  domain.UtteranceLog
	now         func() time.Time
}

type Options struct {
	MaxAttempts int
	// Utterances is optional. Append failures are logged and ignored.
	Utterances domain.UtteranceLog
}

func NewService(gateway *Gateway, vocab domain.Vocabulary, opts Options) *Service {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Service{
		gateway:     gateway,
		vocab:       vocab,
		maxAttempts: maxAttempts,
		utterances:  opts.Utterances,
		now:         time.Now,
	}
}

// Result is the outcome of one Classify call.
type Result struct {
	Directives []domain.Directive
	Attempts   int
}

// Classify returns the directives for utterance. The same utterance is
// resubmitted while the answer is unresolved, up to the attempt budget;
// then an *domain.UnresolvedError is returned. Provider errors are
// returned as is, without retry.
func (s *Service) Classify(ctx context.Context, utterance string) (*Result, error) {
	if strings.TrimSpace(utterance) == "" {
		return nil, domain.ErrEmptyUtterance
	}

	log := observability.LoggerFromContext(ctx)
	log.Info("classifying utterance", "utterance", utterance)

	s.record(ctx, utterance)

	var last []domain.Directive
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		start := time.Now()

		raw, err := s.gateway.Classify(ctx, utterance)
		if err != nil {
			log.Error("model call failed", "attempt", attempt, "error", err)
			return nil, err
		}

		directives := Normalize(raw, s.vocab)
		resolved := !domain.AnyUnresolved(directives)

		log.Info("attempt done",
			"attempt", attempt,
			"raw_len", len(raw),
			"directives", len(directives),
			"resolved", resolved,
			"elapsed_ms", time.Since(start).Milliseconds())

		if resolved {
			return &Result{Directives: directives, Attempts: attempt}, nil
		}
		last = directives
	}

	log.Warn("classification unresolved", "attempts", s.maxAttempts)
	return nil, &domain.UnresolvedError{Attempts: s.maxAttempts, Last: last}
}

// RecentUtterances lists the last limit utterances of the diagnostic log.
func (s *Service) RecentUtterances(ctx context.Context, limit int) ([]*domain.UtteranceEntry, error) {
	if s.utterances == nil {
		return []*domain.UtteranceEntry{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.utterances.Recent(ctx, limit)
}

func (s *Service) record(ctx context.Context, utterance string) {
	if s.utterances == nil {
		return
	}

	entry := &domain.UtteranceEntry{
		ID:         domain.EntryID(uuid.NewString()),
		RequestID:  domain.RequestID(observability.RequestIDFromContext(ctx)),
		Text:       utterance,
		ReceivedAt: s.now(),
	}
	if err := s.utterances.Append(ctx, entry); err != nil {
		observability.LoggerFromContext(ctx).Warn("failed to record utterance", "error", err)
	}
}
