package classification

import (
	"context"
	"strings"
	"time"

	"github.com/PabloGalante/farum-router/internal/domain"
)

// Gateway performs one classification request per call and returns the
// streamed reply as a single string.
type Gateway struct {
	llm         domain.LLMClient
	model       string
	temperature float32
	timeout     time.Duration

	preamble string
	history  []domain.Exchange
}

// GatewayConfig holds the fixed request parameters.
type GatewayConfig struct {
	Model       string
	Temperature float32
	// Timeout bounds one request, stream included. Zero means no budget.
	Timeout time.Duration

	Preamble string
	History  []domain.Exchange
}

func NewGateway(llm domain.LLMClient, cfg GatewayConfig) *Gateway {
	history := make([]domain.Exchange, len(cfg.History))
	copy(history, cfg.History)

	return &Gateway{
		llm:         llm,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		preamble:    cfg.Preamble,
		history:     history,
	}
}

// Classify sends utterance to the model and drains the stream. Fragments
// are concatenated in arrival order. Any provider failure comes back as a
// *domain.ProviderError and no partial text is returned.
func (g *Gateway) Classify(ctx context.Context, utterance string) (string, error) {
	if strings.TrimSpace(utterance) == "" {
		return "", domain.ErrEmptyUtterance
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	req := domain.ClassificationRequest{
		Model:       g.model,
		Utterance:   utterance,
		Temperature: g.temperature,
		Preamble:    g.preamble,
		History:     g.history,
		Truncate:    false,
		Connectors:  nil,
	}

	var sb strings.Builder
	for frag, err := range g.llm.StreamClassification(ctx, req) {
		if err != nil {
			return "", &domain.ProviderError{Op: "stream", Err: err}
		}
		sb.WriteString(frag)
	}

	// a stream that stops early because the budget ran out is still a failure
	if err := ctx.Err(); err != nil {
		return "", &domain.ProviderError{Op: "stream", Err: err}
	}

	return sb.String(), nil
}
