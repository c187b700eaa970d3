package client

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/devfs/pkg/fs"
)

// Common error types
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnavailable     = errors.New("server unavailable")
	ErrTimeout         = errors.New("operation timed out")
	ErrPrecondition    = errors.New("wrong node type for operation")
)

// StatusToError converts a gRPC error into an *fs.FSError whose cause can be
// tested with errors.Is against the fs sentinel errors.
func StatusToError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	s, ok := status.FromError(err)
	if !ok {
		return fs.NewError(op, path, err)
	}

	var cause error
	switch s.Code() {
	case codes.NotFound:
		cause = fs.ErrNotExist
	case codes.AlreadyExists:
		cause = fs.ErrExist
	case codes.PermissionDenied:
		cause = fs.ErrPermission
	case codes.FailedPrecondition:
		cause = ErrPrecondition
	case codes.Unimplemented:
		cause = fs.ErrNotSupported
	case codes.InvalidArgument:
		cause = ErrInvalidArgument
	case codes.Unavailable:
		cause = ErrUnavailable
	case codes.DeadlineExceeded:
		cause = ErrTimeout
	default:
		cause = fs.ErrIO
	}

	return fs.NewError(op, path, &RemoteError{Code: s.Code(), Message: s.Message(), cause: cause})
}

// RemoteError is an error reported by the server
type RemoteError struct {
	Code    codes.Code
	Message string
	cause   error
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	return e.Code.String() + ": " + e.Message
}

// Unwrap returns the local equivalent of the status code
func (e *RemoteError) Unwrap() error {
	return e.cause
}
