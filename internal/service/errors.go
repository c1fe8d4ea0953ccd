package service

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password, so a
	// caller cannot tell the two apart.
	ErrInvalidCredentials = errors.New("the provided credentials are incorrect")
	ErrAccountDisabled    = errors.New("account has been deactivated")
	ErrForbidden          = errors.New("permission denied")
)

// ValidationError carries field-keyed messages for a 422 response.
type ValidationError struct {
	Message string
	Errors  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "the given data was invalid"
}

// fieldErrors accumulates validation messages; the first one becomes the
// top-level message.
type fieldErrors struct {
	message string
	errors  map[string][]string
}

func (f *fieldErrors) add(field, msg string) {
	if f.errors == nil {
		f.errors = make(map[string][]string)
	}
	if f.message == "" {
		f.message = msg
	}
	f.errors[field] = append(f.errors[field], msg)
}

func (f *fieldErrors) err() error {
	if len(f.errors) == 0 {
		return nil
	}
	return &ValidationError{Message: f.message, Errors: f.errors}
}
