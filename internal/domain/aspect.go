package domain

import (
	"fmt"
	"strings"
)

// AspectRatio is the width:height shape requested for a generated image.
type AspectRatio string

const (
	AspectSquare        AspectRatio = "1:1"
	AspectPortrait3x4   AspectRatio = "3:4"
	AspectLandscape4x3  AspectRatio = "4:3"
	AspectPortrait9x16  AspectRatio = "9:16"
	AspectLandscape16x9 AspectRatio = "16:9"
)

// DefaultAspectRatio is preselected when a session starts.
const DefaultAspectRatio = AspectPortrait9x16

var aspectRatios = []AspectRatio{
	AspectSquare,
	AspectPortrait3x4,
	AspectLandscape4x3,
	AspectPortrait9x16,
	AspectLandscape16x9,
}

// AspectRatios returns the supported ratios in display order.
func AspectRatios() []AspectRatio {
	out := make([]AspectRatio, len(aspectRatios))
	copy(out, aspectRatios)
	return out
}

// Valid reports whether r is one of the supported ratios.
func (r AspectRatio) Valid() bool {
	for _, candidate := range aspectRatios {
		if r == candidate {
			return true
		}
	}
	return false
}

func (r AspectRatio) String() string { return string(r) }

// ParseAspectRatio sanitizes free-form input into a supported ratio.
func ParseAspectRatio(raw string) (AspectRatio, error) {
	r := AspectRatio(strings.TrimSpace(raw))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAspectRatio, raw)
	}
	return r, nil
}
