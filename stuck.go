package lisprt

import "errors"

// StuckError is returned by an entry computation that reached a state it
// cannot continue from. The driver writes Error() to stdout and exits 1.
type StuckError struct {
	Description string
}

func (e *StuckError) Error() string {
	return "Stuck[" + e.Description + "]"
}

// Fail reports a stuck state. Entry computations return the result as their
// error; control never resumes past it.
func Fail(description string) error {
	return &StuckError{Description: description}
}

// AsStuck reports whether err carries a stuck state.
func AsStuck(err error) (*StuckError, bool) {
	var se *StuckError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
