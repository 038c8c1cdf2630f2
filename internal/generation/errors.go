package generation

import "errors"

// ErrMalformedOutput marks a completion that came back but could not be
// mapped onto the expected shape. It is retried the same way provider and
// timeout errors are, but callers can tell the cases apart with errors.Is.
var ErrMalformedOutput = errors.New("malformed model output")

func IsMalformedOutput(err error) bool {
	return errors.Is(err, ErrMalformedOutput)
}
