package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/codematch/internal/types"
)

// Auth errors are mapped by the auth interceptor. Everything the handlers
// return passes through statusError:
//   unknown template            -> NOT_FOUND
//   bad input, embed overflow   -> INVALID_ARGUMENT
//   context deadline            -> DEADLINE_EXCEEDED
//   journal failures            -> UNAVAILABLE
func statusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, types.ErrTemplateNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, types.ErrEmbedOverflow),
		errors.Is(err, types.ErrInvalidCode),
		errors.Is(err, types.ErrCodeTooLong):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}
