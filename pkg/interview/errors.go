package interview

import "errors"

var (
	// ErrEmptyInput is returned when a required input such as the image
	// payload is empty.
	ErrEmptyInput = errors.New("interview: empty input")

	// ErrBadImage is returned when an image payload is not valid base64
	// or a well-formed data URL.
	ErrBadImage = errors.New("interview: invalid image payload")

	// ErrConsumed is yielded when a Turn is iterated a second time.
	ErrConsumed = errors.New("interview: turn already consumed")
)

// UpstreamError reports a failed call to the model provider or the search
// backend. Op is "generate", "extract" or "search".
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return "interview: " + e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
