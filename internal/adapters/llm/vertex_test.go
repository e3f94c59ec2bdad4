package llm

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/PabloGalante/farum-router/internal/domain"
)

type fakeStreamer struct {
	chunks []*genai.GenerateContentResponse
	err    error

	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
}

func (f *fakeStreamer) GenerateContentStream(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) iter.Seq2[*genai.GenerateContentResponse, error] {
	f.gotModel = model
	f.gotContents = contents
	f.gotConfig = config

	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if f.err != nil {
			yield(nil, f.err)
		}
	}
}

func chunk(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(text, genai.RoleModel)},
		},
	}
}

func testRequest() domain.ClassificationRequest {
	return domain.ClassificationRequest{
		Model:       "gemini-2.5-flash",
		Utterance:   "open chrome and firefox",
		Temperature: 0.7,
		Preamble:    Preamble(),
		History:     FewShotHistory(),
	}
}

func collect(t *testing.T, seq iter.Seq2[string, error]) ([]string, error) {
	t.Helper()

	var frags []string
	for frag, err := range seq {
		if err != nil {
			return frags, err
		}
		frags = append(frags, frag)
	}
	return frags, nil
}

func TestVertexStreamYieldsFragmentsInOrder(t *testing.T) {
	fs := &fakeStreamer{chunks: []*genai.GenerateContentResponse{
		chunk("open chr"), chunk(""), chunk("ome, open "), chunk("firefox"),
	}}
	client := &VertexClient{models: fs}

	frags, err := collect(t, client.StreamClassification(context.Background(), testRequest()))
	require.NoError(t, err)
	assert.Equal(t, []string{"open chr", "ome, open ", "firefox"}, frags)
}

func TestVertexRequestShape(t *testing.T) {
	fs := &fakeStreamer{}
	client := &VertexClient{models: fs}
	req := testRequest()

	_, err := collect(t, client.StreamClassification(context.Background(), req))
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", fs.gotModel)

	// whole history plus the utterance, nothing truncated
	require.Len(t, fs.gotContents, len(req.History)+1)
	assert.Equal(t, genai.Role(genai.RoleUser), genai.Role(fs.gotContents[0].Role))
	assert.Equal(t, genai.Role(genai.RoleModel), genai.Role(fs.gotContents[1].Role))
	last := fs.gotContents[len(fs.gotContents)-1]
	assert.Equal(t, "open chrome and firefox", last.Parts[0].Text)

	require.NotNil(t, fs.gotConfig)
	require.NotNil(t, fs.gotConfig.Temperature)
	assert.InDelta(t, 0.7, *fs.gotConfig.Temperature, 1e-6)
	require.NotNil(t, fs.gotConfig.SystemInstruction)
	assert.Equal(t, Preamble(), fs.gotConfig.SystemInstruction.Parts[0].Text)
	assert.Empty(t, fs.gotConfig.Tools)
}

func TestVertexStreamError(t *testing.T) {
	boom := errors.New("quota exceeded")
	fs := &fakeStreamer{chunks: []*genai.GenerateContentResponse{chunk("open")}, err: boom}
	client := &VertexClient{models: fs}

	frags, err := collect(t, client.StreamClassification(context.Background(), testRequest()))
	assert.Equal(t, []string{"open"}, frags)
	assert.ErrorIs(t, err, boom)
}

func TestVertexRejectsUnsupportedRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *domain.ClassificationRequest)
	}{
		{name: "truncate", mutate: func(r *domain.ClassificationRequest) { r.Truncate = true }},
		{name: "connectors", mutate: func(r *domain.ClassificationRequest) { r.Connectors = []string{"google_search"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeStreamer{chunks: []*genai.GenerateContentResponse{chunk("exit")}}
			client := &VertexClient{models: fs}
			req := testRequest()
			tt.mutate(&req)

			frags, err := collect(t, client.StreamClassification(context.Background(), req))
			assert.Empty(t, frags)
			assert.ErrorIs(t, err, domain.ErrUnsupportedRequest)
			assert.Nil(t, fs.gotConfig, "nothing sent to the model")
		})
	}
}

func TestChunkTextSkipsThoughts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "exit"},
			}},
		}},
	}

	assert.Equal(t, "exit", chunkText(resp))
	assert.Equal(t, "", chunkText(nil))
	assert.Equal(t, "", chunkText(&genai.GenerateContentResponse{}))
}

func TestNewVertexClientValidation(t *testing.T) {
	ctx := context.Background()

	_, err := NewVertexClient(ctx, VertexConfig{Backend: BackendVertex})
	assert.Error(t, err)

	_, err = NewVertexClient(ctx, VertexConfig{Backend: BackendGemini})
	assert.Error(t, err)

	_, err = NewVertexClient(ctx, VertexConfig{Backend: "openai"})
	assert.Error(t, err)
}
