package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"imagestudio/internal/domain"
)

// Source adapts a Generator to the studio's remote capability, returning the
// asset as a data URI reference.
type Source struct {
	gen Generator
}

// NewSource wraps gen.
func NewSource(gen Generator) *Source {
	return &Source{gen: gen}
}

// Generate runs one provider call for req.
func (s *Source) Generate(ctx context.Context, req domain.GenerationRequest) (domain.ImageRef, error) {
	asset, err := s.gen.Generate(ctx, GenerateRequest{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		RequestID:   uuid.NewString(),
	})
	if err != nil {
		return "", err
	}
	if asset == nil || len(asset.Data) == 0 {
		return "", domain.ErrNoImage
	}
	return EncodeReference(asset), nil
}

// EncodeReference renders asset as a base64 data URI.
func EncodeReference(asset *Asset) domain.ImageRef {
	mime := asset.MIMEType
	if mime == "" {
		mime = "application/octet-stream"
	}
	return domain.ImageRef("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(asset.Data))
}

// DecodeReference reverses EncodeReference. Only base64 data URIs are supported.
func DecodeReference(ref domain.ImageRef) (*Asset, error) {
	raw := string(ref)
	if !strings.HasPrefix(raw, "data:") {
		return nil, fmt.Errorf("image: reference is not a data URI")
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("image: malformed data URI")
	}
	mime, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, fmt.Errorf("image: unsupported data URI encoding %q", encoding)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("image: decode data URI: %w", err)
	}
	w, h := decodeImageDimensions(data)
	return &Asset{Data: data, MIMEType: mime, Width: w, Height: h}, nil
}

// ExtensionFor returns a file extension for mime.
func ExtensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
