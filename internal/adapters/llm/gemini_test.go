package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"

	"github.com/PabloGalante/studybuddy/internal/domain"
)

func TestFragmentFromGrounding(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText("OFFICIAL RULE: Register.", genai.RoleModel),
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{URI: "https://berlin.de", Title: "Berlin"}},
					{Web: &genai.GroundingChunkWeb{URI: "", Title: "no uri"}},
					{},
					nil,
				},
			},
		}},
	}

	got := fragmentFrom(resp)

	assert.Equal(t, "OFFICIAL RULE: Register.", got.Text)
	assert.Equal(t, []domain.Citation{{URI: "https://berlin.de", Title: "Berlin"}}, got.Citations)
}

func TestFragmentFromEmpty(t *testing.T) {
	assert.Equal(t, domain.Fragment{}, fragmentFrom(nil))
	assert.Equal(t, domain.Fragment{}, fragmentFrom(&genai.GenerateContentResponse{}))
}
