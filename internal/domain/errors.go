package domain

import "errors"

// Error kinds shared by the session and ledger components.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication error")
	ErrUpload     = errors.New("upload error")
	ErrNotFound   = errors.New("not found")
	ErrNetwork    = errors.New("network error")
	ErrForbidden  = errors.New("forbidden")
)

// Error carries a kind, the failing operation and a message meant for the user.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Message returns the user-facing text without the operation prefix.
func (e *Error) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "unknown error"
}

// NewError builds an Error of the given kind.
func NewError(kind error, op string, msg string, cause error) error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

// Validation is shorthand for a ValidationError with a message.
func Validation(op string, msg string) error {
	return &Error{Kind: ErrValidation, Op: op, Msg: msg}
}

// NotFound is shorthand for a NotFoundError with a message.
func NotFound(op string, msg string) error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: msg}
}

// Network wraps a transport failure.
func Network(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: ErrNetwork, Op: op, Err: cause}
}

// KindOf returns the error kind of err, or nil when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrAuth, ErrUpload, ErrNotFound, ErrForbidden, ErrNetwork} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// MessageOf extracts the user-facing message of err.
func MessageOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
