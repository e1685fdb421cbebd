package inspect

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/orrery/core"
	"github.com/signalsfoundry/orrery/kb"
)

var (
	// ErrNotReady is returned when the server has no scene to inspect.
	ErrNotReady = errors.New("inspector not ready")
	// ErrInvalidRequest marks malformed request payloads.
	ErrInvalidRequest = errors.New("invalid request")
)

// ToStatusError maps scene errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ErrNotReady):
		return status.Error(codes.Unavailable, err.Error())

	case errors.Is(err, kb.ErrBodyNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, kb.ErrInvalidBody),
		errors.Is(err, kb.ErrDanglingHostReference),
		errors.Is(err, core.ErrInvalidRow),
		errors.Is(err, core.ErrEmptyTable):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, kb.ErrBodyExists):
		return status.Error(codes.AlreadyExists, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}
