package advisory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	model  string
	config *genai.GenerateContentConfig
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.config = model, config
	return f.resp, f.err
}

func TestGeminiCompleter_Complete(t *testing.T) {
	fake := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "Shift pumping "}, {Text: "to midday."}}},
		}},
	}}
	c := newGeminiCompleter(fake, "", 300)

	text, err := c.Complete(context.Background(), "sys", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Shift pumping to midday.", text)
	assert.Equal(t, defaultGeminiModel, fake.model)
	assert.Equal(t, int32(300), fake.config.MaxOutputTokens)
	require.NotNil(t, fake.config.SystemInstruction)
}

func TestGeminiCompleter_Errors(t *testing.T) {
	_, err := newGeminiCompleter(&fakeGenerator{err: errors.New("quota")}, "m", 1).Complete(context.Background(), "s", "p")
	assert.ErrorContains(t, err, "quota")

	_, err = newGeminiCompleter(&fakeGenerator{resp: &genai.GenerateContentResponse{}}, "m", 1).Complete(context.Background(), "s", "p")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}
