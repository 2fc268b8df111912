package image

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured for the gemini provider.
const DefaultGeminiModel = "gemini-2.5-flash-image"

// contentModels is the subset of *genai.Models used by GeminiGenerator.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator asks a Gemini model with native image output for a picture.
type GeminiGenerator struct {
	models contentModels
	model  string
	logger zerolog.Logger
}

// NewGeminiGenerator wraps the genai models service.
func NewGeminiGenerator(models contentModels, model string, logger *zerolog.Logger) (*GeminiGenerator, error) {
	if models == nil {
		return nil, fmt.Errorf("image: genai models service is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	l := zerolog.New(io.Discard)
	if logger != nil {
		l = *logger
	}
	return &GeminiGenerator{models: models, model: model, logger: l}, nil
}

func (g *GeminiGenerator) Name() string { return ProviderGemini }

// Generate returns the first inline image of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: req.AspectRatio.String()},
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(strings.TrimSpace(req.Prompt)), cfg)
	if err != nil {
		g.logger.Warn().Err(err).Str("model", g.model).Str("request_id", req.RequestID).Msg("image: gemini request failed")
		return nil, providerFailure(ProviderGemini, err)
	}
	if resp == nil {
		return nil, &ProviderError{Provider: ProviderGemini, Message: "The image service returned an empty response."}
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		msg := strings.TrimSpace(fb.BlockReasonMessage)
		if msg == "" {
			msg = string(fb.BlockReason)
		}
		return nil, &ProviderError{Provider: ProviderGemini, Message: "The prompt was blocked: " + msg}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, &ProviderError{Provider: ProviderGemini, Message: "The image service returned no candidates."}
	}

	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			if !strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				continue
			}
			w, h := decodeImageDimensions(part.InlineData.Data)
			g.logger.Debug().Str("model", g.model).Str("request_id", req.RequestID).Int("width", w).Int("height", h).Msg("image: gemini returned image")
			return &Asset{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType, Width: w, Height: h}, nil
		}
	}

	if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonStop {
		return nil, &ProviderError{Provider: ProviderGemini, Message: fmt.Sprintf("Image generation stopped early (%s).", candidate.FinishReason)}
	}
	return nil, &ProviderError{Provider: ProviderGemini, Message: "The image service returned no image data."}
}

var _ Generator = (*GeminiGenerator)(nil)
