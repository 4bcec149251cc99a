package network

import "errors"

// Error implements errors returned while building or running a
// network. Op names the operation that failed.
type Error struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error so that errors.Is can be used on
// the sentinel errors of this package.
func (e *Error) Unwrap() error {
	return e.Err
}

// Configuration errors, detected before any parameter is allocated
var (
	ErrInvalidConv       = errors.New("invalid convolution arguments")
	ErrNonPositiveOutput = errors.New("non-positive convolution output size")
	ErrInvalidConfig     = errors.New("invalid network configuration")
)

// Errors detected when running a network on some input
var (
	ErrShapeMismatch = errors.New("input shape mismatch")
	ErrDtype         = errors.New("unsupported input dtype")
	ErrBatchTooSmall = errors.New("batch norm needs more than one value " +
		"per channel when training")
)

// IsConfigError returns whether or not an error reports an invalid
// network configuration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConv) ||
		errors.Is(err, ErrNonPositiveOutput) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsShapeError returns whether or not an error reports that an input
// to a network was of the wrong shape.
func IsShapeError(err error) bool {
	return errors.Is(err, ErrShapeMismatch)
}

func newError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
