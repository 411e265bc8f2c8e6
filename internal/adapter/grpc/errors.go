package grpc

import (
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/simaogato/portfolio-backend/internal/domain"
)

// mapError converts a service error to a gRPC status error.
// Internal errors are logged and their details kept out of the status.
func mapError(log zerolog.Logger, method string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		log.Error().Err(err).Str("method", method).Msg("RPC failed")
		return status.Error(codes.Internal, "internal error")
	}
}
