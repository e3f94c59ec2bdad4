package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/PabloGalante/farum-router/internal/app/classification"
	"github.com/PabloGalante/farum-router/internal/domain"
	"github.com/PabloGalante/farum-router/internal/observability"
)

type Classifier interface {
	Classify(ctx context.Context, utterance string) (*classification.Result, error)
}

type DirectivePublisher interface {
	PublishDirectives(ctx context.Context, msg *DirectiveMessage) error
}

// Worker turns queued utterances into published directive messages.
type Worker struct {
	classifier Classifier
	publisher  DirectivePublisher
}

func NewWorker(classifier Classifier, publisher DirectivePublisher) *Worker {
	return &Worker{classifier: classifier, publisher: publisher}
}

// Handle classifies msg and publishes the outcome. Unresolved results are
// published with Error set. Provider failures are returned so the delivery
// gets requeued.
func (w *Worker) Handle(ctx context.Context, msg *UtteranceMessage) error {
	if msg.RequestID == "" {
		msg.RequestID = uuid.NewString()
	}
	ctx = observability.WithRequestID(ctx, msg.RequestID)

	out := &DirectiveMessage{
		RequestID:  msg.RequestID,
		Utterance:  msg.Text,
		Directives: []string{},
	}

	res, err := w.classifier.Classify(ctx, msg.Text)
	var unresolved *domain.UnresolvedError
	switch {
	case err == nil:
		out.Directives = domain.Strings(res.Directives)
		out.Attempts = res.Attempts
	case errors.As(err, &unresolved):
		out.Attempts = unresolved.Attempts
		out.Error = unresolved.Error()
	case errors.Is(err, domain.ErrEmptyUtterance):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		return err
	}

	if err := w.publisher.PublishDirectives(ctx, out); err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info("directives published",
		"directives", len(out.Directives),
		"attempts", out.Attempts,
		"unresolved", out.Error != "")
	return nil
}
