package image

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Options selects and configures a provider.
type Options struct {
	Provider       string
	APIKey         string
	Model          string
	OutputMIME     string
	SyntheticDelay time.Duration
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
}

// New builds the provider named in opts.
func New(ctx context.Context, opts Options) (Generator, error) {
	provider := NormalizeProvider(opts.Provider)
	if provider == ProviderSynthetic {
		return NewSyntheticGenerator(opts.SyntheticDelay), nil
	}

	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("image: %s provider requires GEMINI_API_KEY", provider)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("image: create genai client: %w", err)
	}

	if provider == ProviderGemini {
		return NewGeminiGenerator(client.Models, opts.Model, opts.Logger)
	}
	return NewImagenGenerator(client.Models, opts.Model, opts.OutputMIME, opts.Logger)
}
