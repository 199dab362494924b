package attendance

import "errors"

var (
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrPunchNotFound  = errors.New("punch not found")
)

// ValidationError is input the engine refuses to act on: malformed date key,
// malformed identifier, an empty policy patch, or a patch that would break a
// policy invariant. Reported to the caller immediately, no partial effect.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
