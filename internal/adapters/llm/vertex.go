package llm

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/PabloGalante/farum-router/internal/domain"
)

const (
	BackendVertex = "vertex"
	BackendGemini = "gemini"
)

// contentStreamer is the slice of *genai.Models we depend on.
type contentStreamer interface {
	GenerateContentStream(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) iter.Seq2[*genai.GenerateContentResponse, error]
}

// VertexConfig selects the genai backend and its credentials.
type VertexConfig struct {
	Backend   string // "vertex" or "gemini"
	ProjectID string
	Location  string
	APIKey    string
}

type VertexClient struct {
	models contentStreamer
}

// NewVertexClient creates an LLMClient backed by Gemini, either through
// Vertex AI (project + location) or the Gemini Developer API (API key).
func NewVertexClient(ctx context.Context, cfg VertexConfig) (*VertexClient, error) {
	var cc *genai.ClientConfig

	switch cfg.Backend {
	case BackendVertex, "":
		if cfg.ProjectID == "" || cfg.Location == "" {
			return nil, fmt.Errorf("vertex backend needs a project and a location")
		}
		cc = &genai.ClientConfig{
			Project:  cfg.ProjectID,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	case BackendGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini backend needs an API key")
		}
		cc = &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
	default:
		return nil, fmt.Errorf("unknown genai backend %q", cfg.Backend)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &VertexClient{models: client.Models}, nil
}

// StreamClassification implements domain.LLMClient using a streamed
// GenerateContent call.
func (v *VertexClient) StreamClassification(
	ctx context.Context,
	req domain.ClassificationRequest,
) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if err := req.Validate(); err != nil {
			yield("", err)
			return
		}

		cfg := buildConfig(req)
		contents := buildContents(req)

		for resp, err := range v.models.GenerateContentStream(ctx, req.Model, contents, cfg) {
			if err != nil {
				yield("", fmt.Errorf("vertex stream: %w", err))
				return
			}

			text := chunkText(resp)
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

// buildConfig sets no Tools: the request carries no connectors.
func buildConfig(req domain.ClassificationRequest) *genai.GenerateContentConfig {
	temp := req.Temperature

	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.Preamble, genai.RoleUser),
		Temperature:       &temp,
	}
}

// buildContents lays out the few-shot history followed by the utterance.
// Nothing is dropped: the request is never truncated.
func buildContents(req domain.ClassificationRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, ex := range req.History {
		role := genai.Role(genai.RoleUser)
		if ex.Role == domain.RoleChatbot {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(ex.Message, role))
	}

	return append(contents, genai.NewContentFromText(req.Utterance, genai.RoleUser))
}

// chunkText extracts the visible text of one streamed chunk, skipping
// thought parts.
func chunkText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}

	var text string
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		text += p.Text
	}
	return text
}
