package image

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"imagestudio/internal/domain"
)

// Provider names accepted by New.
const (
	ProviderImagen    = "imagen"
	ProviderGemini    = "gemini"
	ProviderSynthetic = "synthetic"
)

// GenerateRequest describes a normalized request passed to any image provider.
type GenerateRequest struct {
	Prompt      string
	AspectRatio domain.AspectRatio
	RequestID   string
}

// Asset represents a generated image.
type Asset struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Asset, error)
	Name() string
}

// ProviderError carries a message fit for display. The wrapped error keeps
// the provider detail for logs.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) Unwrap() error { return e.Err }

// Is lets callers match any provider failure against domain.ErrProviderFailure.
func (e *ProviderError) Is(target error) bool { return target == domain.ErrProviderFailure }

// NormalizeProvider sanitizes a configured provider name.
func NormalizeProvider(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderGemini:
		return ProviderGemini
	case ProviderSynthetic:
		return ProviderSynthetic
	default:
		return ProviderImagen
	}
}

// providerFailure translates SDK errors into a ProviderError. Context errors
// and errors that already carry a display message pass through.
func providerFailure(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: provider, Message: "The image request timed out or was cancelled.", Err: err}
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return err
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return &ProviderError{Provider: provider, Message: strings.TrimSpace(apiErr.Message), Err: err}
	}
	return &ProviderError{Provider: provider, Message: "The image service could not be reached.", Err: err}
}
