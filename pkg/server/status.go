package server

import (
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/devfs/pkg/fs"
)

// toStatus converts a Go error to a gRPC status error. Errors that already
// carry a status are returned unchanged.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(mapErrorToCode(err), err.Error())
}

// mapErrorToCode converts a filesystem error to a gRPC status code
func mapErrorToCode(err error) codes.Code {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return codes.NotFound
	case errors.Is(err, fs.ErrExist):
		return codes.AlreadyExists
	case errors.Is(err, fs.ErrPermission), errors.Is(err, fs.ErrReadOnly):
		return codes.PermissionDenied
	case errors.Is(err, fs.ErrIsDir), errors.Is(err, fs.ErrNotDir), errors.Is(err, fs.ErrNotEmpty):
		return codes.FailedPrecondition
	case errors.Is(err, fs.ErrInvalidName), errors.Is(err, fs.ErrInvalidHandle):
		return codes.InvalidArgument
	case errors.Is(err, fs.ErrNotSupported):
		return codes.Unimplemented
	case errors.Is(err, fs.ErrIO):
		return codes.DataLoss
	}

	// Default for unrecognized errors
	slog.Warn("Unknown error type.", "type", fmt.Sprintf("%T", err), "err", err)
	return codes.Internal
}
