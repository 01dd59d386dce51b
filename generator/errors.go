package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrNoJSONFound is returned by ExtractLastJSON when no offset decodes.
	ErrNoJSONFound = errors.New("no valid JSON found in string")
	// ErrEmptyOutput means a stage answered with no text.
	ErrEmptyOutput = errors.New("stage produced no usable output")
)

// GenerationFailedError reports the stage whose model call failed.
type GenerationFailedError struct {
	Stage string
	Err   error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("generation failed at %s stage: %v", e.Stage, e.Err)
}

func (e *GenerationFailedError) Unwrap() error { return e.Err }

// UnknownEditorModeError is returned for an unsupported editor mode value.
type UnknownEditorModeError struct {
	Mode string
}

func (e *UnknownEditorModeError) Error() string {
	return fmt.Sprintf("unknown editor mode %q (want json or markdown)", e.Mode)
}
