package image

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"strconv"
	"strings"
	"time"

	"imagestudio/internal/domain"
)

// SyntheticGenerator renders a deterministic placeholder PNG so the studio
// runs locally without an API key.
type SyntheticGenerator struct {
	delay time.Duration
}

// NewSyntheticGenerator creates a placeholder provider. delay simulates the
// latency of a remote call.
func NewSyntheticGenerator(delay time.Duration) *SyntheticGenerator {
	return &SyntheticGenerator{delay: delay}
}

func (g *SyntheticGenerator) Name() string { return ProviderSynthetic }

func (g *SyntheticGenerator) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, providerFailure(ProviderSynthetic, ctx.Err())
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, providerFailure(ProviderSynthetic, err)
	}

	width, height := syntheticSize(req.AspectRatio)
	seed := deterministicSeed(strings.TrimSpace(req.Prompt), req.AspectRatio)
	data, err := renderSyntheticImage(width, height, seed)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderSynthetic, Message: "The placeholder image could not be rendered.", Err: err}
	}
	return &Asset{Data: data, MIMEType: "image/png", Width: width, Height: height}, nil
}

func syntheticSize(r domain.AspectRatio) (int, int) {
	switch r {
	case domain.AspectPortrait3x4:
		return 384, 512
	case domain.AspectLandscape4x3:
		return 512, 384
	case domain.AspectPortrait9x16:
		return 288, 512
	case domain.AspectLandscape16x9:
		return 512, 288
	default:
		return 512, 512
	}
}

func renderSyntheticImage(width, height int, seed string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripeHeight := max(16, height/12)
	for y := 0; y < height; y += stripeHeight * 2 {
		stripe := image.Rect(0, y, width, min(height, y+stripeHeight))
		draw.Draw(img, stripe, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	diagonal := colorFromSeed(seed, 2)
	for x := 0; x < max(width, height); x += max(16, width/32) {
		for y := 0; y < height; y++ {
			xx := x + y
			if xx >= width {
				break
			}
			img.Set(xx, y, diagonal)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func colorFromSeed(seed string, shift int) color.RGBA {
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{R: hexByte(segment[0:2]), G: hexByte(segment[2:4]), B: hexByte(segment[4:6]), A: 255}
}

func hexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(hasher, "%v|", part)
	}
	return hex.EncodeToString(hasher.Sum(nil))[:18]
}

func decodeImageDimensions(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

var _ Generator = (*SyntheticGenerator)(nil)
