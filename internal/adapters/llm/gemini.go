package llm

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/PabloGalante/studybuddy/internal/domain"
	"github.com/PabloGalante/studybuddy/internal/observability"
)

const DefaultModel = "gemini-3-flash-preview"

// GeminiConfig selects the backend: an API key for the Gemini API, or a
// project and location for Vertex AI.
type GeminiConfig struct {
	APIKey    string
	Project   string
	Location  string
	Model     string
	UseVertex bool
	// GoogleSearch enables search grounding, which is where citations come from.
	GoogleSearch bool
}

type GeminiClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiClient creates a StreamClient backed by Gemini.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	cc := &genai.ClientConfig{}
	if cfg.UseVertex {
		if cfg.Project == "" || cfg.Location == "" {
			return nil, fmt.Errorf("project and location must be set for Vertex AI")
		}
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		cc.Backend = genai.BackendVertexAI
	} else {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("an API key is required for the Gemini API")
		}
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	gcfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
	}
	if cfg.GoogleSearch {
		gcfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	return &GeminiClient{
		client: client,
		model:  model,
		config: gcfg,
	}, nil
}

// AskStream implements domain.StreamClient. Each streamed response becomes one
// fragment carrying its text and any web grounding chunks.
func (g *GeminiClient) AskStream(ctx context.Context, query string) iter.Seq2[domain.Fragment, error] {
	return func(yield func(domain.Fragment, error) bool) {
		log := observability.LoggerFromContext(ctx).With("model", g.model)
		log.Debug("opening gemini stream")

		contents := []*genai.Content{genai.NewContentFromText(query, genai.RoleUser)}
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, g.config) {
			if err != nil {
				log.Error("gemini stream failed", "error", err)
				yield(domain.Fragment{}, fmt.Errorf("gemini stream: %w", err))
				return
			}
			if !yield(fragmentFrom(resp), nil) {
				return
			}
		}
	}
}

// fragmentFrom extracts the text and the web sources with a URI.
func fragmentFrom(resp *genai.GenerateContentResponse) domain.Fragment {
	if resp == nil {
		return domain.Fragment{}
	}

	frag := domain.Fragment{Text: resp.Text()}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return frag
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return frag
	}
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		frag.Citations = append(frag.Citations, domain.Citation{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}
	return frag
}
