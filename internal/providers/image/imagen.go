package image

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultImagenModel is used when no model is configured for the imagen provider.
const DefaultImagenModel = "imagen-4.0-generate-001"

// imageModels is the subset of *genai.Models used by ImagenGenerator.
type imageModels interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// ImagenGenerator calls the Imagen text-to-image endpoint.
type ImagenGenerator struct {
	models     imageModels
	model      string
	outputMIME string
	logger     zerolog.Logger
}

// NewImagenGenerator wraps the genai models service.
func NewImagenGenerator(models imageModels, model, outputMIME string, logger *zerolog.Logger) (*ImagenGenerator, error) {
	if models == nil {
		return nil, fmt.Errorf("image: genai models service is required")
	}
	if model == "" {
		model = DefaultImagenModel
	}
	if outputMIME == "" {
		outputMIME = "image/jpeg"
	}
	l := zerolog.New(io.Discard)
	if logger != nil {
		l = *logger
	}
	return &ImagenGenerator{models: models, model: model, outputMIME: outputMIME, logger: l}, nil
}

func (g *ImagenGenerator) Name() string { return ProviderImagen }

// Generate requests exactly one image.
func (g *ImagenGenerator) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages:   1,
		OutputMIMEType:   g.outputMIME,
		AspectRatio:      req.AspectRatio.String(),
		IncludeRAIReason: true,
	}

	resp, err := g.models.GenerateImages(ctx, g.model, strings.TrimSpace(req.Prompt), cfg)
	if err != nil {
		g.logger.Warn().Err(err).Str("model", g.model).Str("request_id", req.RequestID).Msg("image: imagen request failed")
		return nil, providerFailure(ProviderImagen, err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, &ProviderError{Provider: ProviderImagen, Message: "The image service returned no images. Try a different prompt."}
	}

	for _, generated := range resp.GeneratedImages {
		if generated == nil {
			continue
		}
		if generated.Image != nil && len(generated.Image.ImageBytes) > 0 {
			mime := generated.Image.MIMEType
			if mime == "" {
				mime = g.outputMIME
			}
			w, h := decodeImageDimensions(generated.Image.ImageBytes)
			g.logger.Debug().Str("model", g.model).Str("request_id", req.RequestID).Int("bytes", len(generated.Image.ImageBytes)).Int("width", w).Int("height", h).Msg("image: imagen returned image")
			return &Asset{Data: generated.Image.ImageBytes, MIMEType: mime, Width: w, Height: h}, nil
		}
		if reason := strings.TrimSpace(generated.RAIFilteredReason); reason != "" {
			return nil, &ProviderError{Provider: ProviderImagen, Message: "The image was blocked by the safety filter: " + reason}
		}
	}
	return nil, &ProviderError{Provider: ProviderImagen, Message: "The image service returned no image data."}
}

var _ Generator = (*ImagenGenerator)(nil)
