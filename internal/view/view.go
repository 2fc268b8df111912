// Package view derives what the user sees from a session snapshot. Derive is
// pure; the HTML and terminal renderers only consume its output.
package view

import "imagestudio/internal/domain"

// PanelKind selects the output panel variant.
type PanelKind string

const (
	PanelEmpty   PanelKind = "empty"
	PanelLoading PanelKind = "loading"
	PanelError   PanelKind = "error"
	PanelImage   PanelKind = "image"
)

// RatioOption is one button of the aspect ratio selector.
type RatioOption struct {
	Value    domain.AspectRatio `json:"value"`
	Selected bool               `json:"selected"`
}

// Form is the input side of the page.
type Form struct {
	Prompt      string        `json:"prompt"`
	PromptLabel string        `json:"prompt_label"`
	PromptHint  string        `json:"prompt_hint"`
	RatioLabel  string        `json:"ratio_label"`
	Ratios      []RatioOption `json:"ratios"`
	Disabled    bool          `json:"disabled"`
	SubmitLabel string        `json:"submit_label"`
	SubmitBusy  bool          `json:"submit_busy"`
}

// Panel is the output side of the page. Only the fields of Kind are set.
type Panel struct {
	Kind    PanelKind       `json:"kind"`
	Message string          `json:"message,omitempty"`
	Image   domain.ImageRef `json:"image,omitempty"`
	Alt     string          `json:"alt,omitempty"`
	Shape   Shape           `json:"shape"`
}

// View is the complete visual model of a session.
type View struct {
	Title   string `json:"title"`
	Tagline string `json:"tagline"`
	Locale  string `json:"locale"`
	Form    Form   `json:"form"`
	Panel   Panel  `json:"panel"`
}

// Derive builds the view of snap using the labels in c.
func Derive(snap domain.Snapshot, c Copy) View {
	busy := snap.State.IsLoading()

	ratios := make([]RatioOption, 0, len(domain.AspectRatios()))
	for _, r := range domain.AspectRatios() {
		ratios = append(ratios, RatioOption{Value: r, Selected: r == snap.AspectRatio})
	}

	submit := c.SubmitIdle
	if busy {
		submit = c.SubmitBusy
	}

	return View{
		Title:   c.Title,
		Tagline: c.Tagline,
		Locale:  c.Locale,
		Form: Form{
			Prompt:      snap.Prompt,
			PromptLabel: c.PromptLabel,
			PromptHint:  c.PromptHint,
			RatioLabel:  c.RatioLabel,
			Ratios:      ratios,
			Disabled:    busy,
			SubmitLabel: submit,
			SubmitBusy:  busy,
		},
		Panel: derivePanel(snap, c),
	}
}

func derivePanel(snap domain.Snapshot, c Copy) Panel {
	p := Panel{Shape: ShapeFor(snap.AspectRatio)}
	switch snap.State.Phase() {
	case domain.PhaseLoading:
		p.Kind = PanelLoading
		p.Message = c.PanelLoading
	case domain.PhaseFailed:
		msg, _ := snap.State.Err()
		p.Kind = PanelError
		p.Message = msg
	case domain.PhaseSucceeded:
		ref, _ := snap.State.Image()
		p.Kind = PanelImage
		p.Image = ref
		p.Alt = c.ImageAlt
	default:
		p.Kind = PanelEmpty
		p.Message = c.PanelEmpty
	}
	return p
}
