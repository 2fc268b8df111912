package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagestudio/internal/domain"
)

func snapshot(state domain.State, ratio domain.AspectRatio) domain.Snapshot {
	return domain.Snapshot{Prompt: "a fox", AspectRatio: ratio, State: state}
}

func TestDerivePanelVariants(t *testing.T) {
	en := CopyFor("en")
	tests := []struct {
		name    string
		state   domain.State
		kind    PanelKind
		message string
		image   domain.ImageRef
		busy    bool
	}{
		{name: "empty", state: domain.EmptyState(), kind: PanelEmpty, message: en.PanelEmpty},
		{name: "loading", state: domain.LoadingState(), kind: PanelLoading, message: en.PanelLoading, busy: true},
		{name: "error", state: domain.FailedState("Please enter a prompt."), kind: PanelError, message: "Please enter a prompt."},
		{name: "image", state: domain.SucceededState("data:image/png;base64,AA"), kind: PanelImage, image: "data:image/png;base64,AA"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := Derive(snapshot(tc.state, domain.AspectSquare), en)
			assert.Equal(t, tc.kind, v.Panel.Kind)
			assert.Equal(t, tc.message, v.Panel.Message)
			assert.Equal(t, tc.image, v.Panel.Image)
			assert.Equal(t, tc.busy, v.Form.Disabled)
			assert.Equal(t, tc.busy, v.Form.SubmitBusy)
			if tc.busy {
				assert.Equal(t, en.SubmitBusy, v.Form.SubmitLabel)
			} else {
				assert.Equal(t, en.SubmitIdle, v.Form.SubmitLabel)
			}
		})
	}
}

func TestDeriveSelectsExactlyOneRatio(t *testing.T) {
	for _, ratio := range domain.AspectRatios() {
		v := Derive(snapshot(domain.EmptyState(), ratio), CopyFor("en"))
		require.Len(t, v.Form.Ratios, 5)
		selected := 0
		for _, opt := range v.Form.Ratios {
			if opt.Selected {
				selected++
				assert.Equal(t, ratio, opt.Value)
			}
		}
		assert.Equal(t, 1, selected)
		assert.Equal(t, ShapeFor(ratio), v.Panel.Shape)
	}
}

func TestShapeForIsTotal(t *testing.T) {
	seen := map[string]bool{}
	for _, ratio := range domain.AspectRatios() {
		shape := ShapeFor(ratio)
		assert.NotEmpty(t, shape.Name)
		assert.NotEmpty(t, shape.CSS)
		assert.Positive(t, shape.Cols)
		assert.Positive(t, shape.Rows)
		seen[shape.Name] = true
	}
	assert.Len(t, seen, 5)

	assert.Equal(t, ShapeFor(domain.AspectSquare), ShapeFor("7:3"))
	assert.Equal(t, ShapeFor(domain.AspectSquare), ShapeFor(""))
	assert.Equal(t, "16 / 9", ShapeFor(domain.AspectLandscape16x9).CSS)
}

func TestCopyFor(t *testing.T) {
	assert.Equal(t, "en", CopyFor("").Locale)
	assert.Equal(t, "en", CopyFor("en-US,en;q=0.9").Locale)
	assert.Equal(t, "id", CopyFor("id-ID,en;q=0.8").Locale)
	assert.Equal(t, "id", CopyFor("id").Locale)
	assert.Equal(t, "en", CopyFor("fr-FR").Locale)
	assert.Equal(t, "en", CopyFor("!!!").Locale)
	assert.ElementsMatch(t, []string{"en", "id"}, Locales())
}

func TestRenderTerminal(t *testing.T) {
	en := CopyFor("en")
	out := RenderTerminal(Derive(snapshot(domain.FailedState("quota exceeded"), domain.AspectPortrait9x16), en), NewStyles(DefaultTheme), 80)
	assert.Contains(t, out, "quota exceeded")
	assert.Contains(t, out, "9:16")
	assert.Contains(t, out, en.SubmitIdle)

	out = RenderTerminal(Derive(snapshot(domain.SucceededState("data:image/png;base64,QUJD"), domain.AspectLandscape16x9), en), NewStyles(DefaultTheme), 0)
	assert.Contains(t, out, "data:image/png;base64, 4 bytes")
	assert.False(t, strings.Contains(out, "QUJD"))
}
