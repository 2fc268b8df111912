package domain

import (
	"errors"
	"strings"
)

// UnknownErrorMessage is shown when a failure carries no usable message.
const UnknownErrorMessage = "An unknown error occurred."

var (
	ErrEmptyPrompt        = errors.New("Please enter a prompt.")
	ErrUnknownAspectRatio = errors.New("unknown aspect ratio")
	ErrNoImage            = errors.New("No image was returned by the image service.")
	ErrProviderFailure    = errors.New("provider failure")
	ErrNotFound           = errors.New("not found")
)

// FailureMessage converts a failed generation into the text shown to the user.
func FailureMessage(err error) string {
	if err == nil {
		return UnknownErrorMessage
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return UnknownErrorMessage
	}
	return msg
}
