package redact

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for inputs that are neither PDF nor a decodable raster.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyOutput is returned when a compositor produced no bytes.
	ErrEmptyOutput = errors.New("redaction produced an empty document")

	// ErrZeroDimension is returned when a page or image has no usable extent.
	ErrZeroDimension = errors.New("page has zero or missing dimensions")

	// ErrUnknownPreset is returned when a preset id is not in the store.
	ErrUnknownPreset = errors.New("unknown preset")
)

// ExtractionError reports a page or file whose tokens could not be extracted.
// Page is -1 when the whole file failed.
type ExtractionError struct {
	Source string
	Page   int
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Page < 0 {
		return fmt.Sprintf("%s extraction failed: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s extraction failed on page %d: %v", e.Source, e.Page, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ValidationError reports a malformed custom pattern or preset entry.
type ValidationError struct {
	Rule string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid rule %q: %v", e.Rule, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ResolutionError reports an action that could not be matched to a detection.
type ResolutionError struct {
	DetectionID string
	Reason      string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve action for detection %q: %s", e.DetectionID, e.Reason)
}

// FatalIOError reports a document that cannot be read or written at all.
type FatalIOError struct {
	Op  string
	Err error
}

func (e *FatalIOError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *FatalIOError) Unwrap() error { return e.Err }

// IsFatal reports whether err aborts a document's pipeline.
func IsFatal(err error) bool {
	var f *FatalIOError
	return errors.As(err, &f)
}
