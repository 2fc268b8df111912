package domain

import "encoding/json"

// DefaultPrompt seeds the prompt field of a fresh session.
const DefaultPrompt = "A beautiful woman wearing a stylish bikini on a sunny tropical beach, cinematic, detailed, hyper-realistic"

// ImageRef is an opaque reference usable directly as an image source,
// typically a data URI or a fetchable URL.
type ImageRef string

// GenerationRequest is the immutable input of one remote call.
type GenerationRequest struct {
	Seq         uint64
	Prompt      string
	AspectRatio AspectRatio
}

// Phase enumerates the mutually exclusive lifecycle phases.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseLoading
	PhaseFailed
	PhaseSucceeded
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseFailed:
		return "error"
	case PhaseSucceeded:
		return "success"
	default:
		return "empty"
	}
}

// State is the generation lifecycle. Only the constructors below produce
// values, so at most one of loading, error and image is ever set.
type State struct {
	phase   Phase
	message string
	image   ImageRef
}

func EmptyState() State   { return State{phase: PhaseEmpty} }
func LoadingState() State { return State{phase: PhaseLoading} }

// FailedState records a terminal failure. A blank message is replaced with
// UnknownErrorMessage.
func FailedState(message string) State {
	if message == "" {
		message = UnknownErrorMessage
	}
	return State{phase: PhaseFailed, message: message}
}

// SucceededState records a terminal success. An empty reference is not a
// success and yields the ErrNoImage failure instead.
func SucceededState(ref ImageRef) State {
	if ref == "" {
		return FailedState(ErrNoImage.Error())
	}
	return State{phase: PhaseSucceeded, image: ref}
}

func (s State) Phase() Phase     { return s.phase }
func (s State) IsLoading() bool  { return s.phase == PhaseLoading }
func (s State) IsTerminal() bool { return s.phase == PhaseFailed || s.phase == PhaseSucceeded }

// Err returns the error message when the state is a failure.
func (s State) Err() (string, bool) {
	if s.phase != PhaseFailed {
		return "", false
	}
	return s.message, true
}

// Image returns the generated reference when the state is a success.
func (s State) Image() (ImageRef, bool) {
	if s.phase != PhaseSucceeded {
		return "", false
	}
	return s.image, true
}

type stateJSON struct {
	Phase       string    `json:"phase"`
	IsLoading   bool      `json:"is_loading"`
	Error       *string   `json:"error"`
	ResultImage *ImageRef `json:"result_image"`
}

// MarshalJSON encodes the state with null for absent error and image.
func (s State) MarshalJSON() ([]byte, error) {
	out := stateJSON{Phase: s.phase.String(), IsLoading: s.IsLoading()}
	if msg, ok := s.Err(); ok {
		out.Error = &msg
	}
	if ref, ok := s.Image(); ok {
		out.ResultImage = &ref
	}
	return json.Marshal(out)
}

// Snapshot is the read model handed to renderers.
type Snapshot struct {
	Prompt      string      `json:"prompt"`
	AspectRatio AspectRatio `json:"aspect_ratio"`
	State       State       `json:"state"`
	Seq         uint64      `json:"seq"`
}
