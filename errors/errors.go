// Package errors provides error values carrying a gRPC status code,
// convertible to and from HTTP status codes. The HTTP backend of
// restcall decodes error responses into these values, so callers can
// match on the code instead of parsing messages.
package errors

import (
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
)

// CodeError is an error with an attached codes.Code.
type CodeError struct {
	code codes.Code
	err  error
}

func (e *CodeError) Error() string {
	return e.err.Error()
}

func (e *CodeError) Unwrap() error {
	return e.err
}

// Code returns the gRPC code of the error.
func (e *CodeError) Code() codes.Code {
	return e.code
}

// HttpCode returns the HTTP status corresponding to the error's code.
func (e *CodeError) HttpCode() int {
	return runtime.HTTPStatusFromCode(e.code)
}

func makeError(code codes.Code, format string, a ...interface{}) *CodeError {
	return &CodeError{
		code: code,
		err:  fmt.Errorf(format, a...),
	}
}

// FromHTTPStatus builds a CodeError whose code corresponds to the
// given HTTP status. It is the inverse of HttpCode, collapsed where
// several codes share one status.
func FromHTTPStatus(status int, format string, a ...interface{}) *CodeError {
	return makeError(codeFromHTTPStatus(status), format, a...)
}

func codeFromHTTPStatus(status int) codes.Code {
	switch status {
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusPreconditionFailed:
		return codes.FailedPrecondition
	case http.StatusRequestedRangeNotSatisfiable:
		return codes.OutOfRange
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case 499: // Client closed request (nginx convention).
		return codes.Canceled
	case http.StatusNotImplemented:
		return codes.Unimplemented
	case http.StatusServiceUnavailable:
		return codes.Unavailable
	case http.StatusGatewayTimeout:
		return codes.DeadlineExceeded
	case http.StatusInternalServerError:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// Canceled indicates the operation was canceled, typically by the caller.
func Canceled(format string, a ...interface{}) *CodeError {
	return makeError(codes.Canceled, format, a...)
}

// Unknown error.
func Unknown(format string, a ...interface{}) *CodeError {
	return makeError(codes.Unknown, format, a...)
}

// InvalidArgument indicates the client specified an invalid argument,
// problematic regardless of the state of the system.
func InvalidArgument(format string, a ...interface{}) *CodeError {
	return makeError(codes.InvalidArgument, format, a...)
}

// DeadlineExceeded means the operation expired before completion.
func DeadlineExceeded(format string, a ...interface{}) *CodeError {
	return makeError(codes.DeadlineExceeded, format, a...)
}

// NotFound means a requested entity was not found.
func NotFound(format string, a ...interface{}) *CodeError {
	return makeError(codes.NotFound, format, a...)
}

// AlreadyExists means an attempt to create an entity failed because
// one already exists.
func AlreadyExists(format string, a ...interface{}) *CodeError {
	return makeError(codes.AlreadyExists, format, a...)
}

// PermissionDenied indicates the caller does not have permission to
// execute the operation.
func PermissionDenied(format string, a ...interface{}) *CodeError {
	return makeError(codes.PermissionDenied, format, a...)
}

// ResourceExhausted indicates some resource has been exhausted,
// perhaps a per-user quota.
func ResourceExhausted(format string, a ...interface{}) *CodeError {
	return makeError(codes.ResourceExhausted, format, a...)
}

// FailedPrecondition indicates the operation was rejected because the
// system is not in a state required for its execution.
func FailedPrecondition(format string, a ...interface{}) *CodeError {
	return makeError(codes.FailedPrecondition, format, a...)
}

// Aborted indicates the operation was aborted, typically due to a
// concurrency issue.
func Aborted(format string, a ...interface{}) *CodeError {
	return makeError(codes.Aborted, format, a...)
}

// OutOfRange means the operation was attempted past the valid range.
func OutOfRange(format string, a ...interface{}) *CodeError {
	return makeError(codes.OutOfRange, format, a...)
}

// Unimplemented indicates the operation is not implemented or not
// enabled in this service.
func Unimplemented(format string, a ...interface{}) *CodeError {
	return makeError(codes.Unimplemented, format, a...)
}

// Internal means some invariant expected by the underlying system has
// been broken.
func Internal(format string, a ...interface{}) *CodeError {
	return makeError(codes.Internal, format, a...)
}

// Unavailable indicates the service is currently unavailable, most
// likely a transient condition.
func Unavailable(format string, a ...interface{}) *CodeError {
	return makeError(codes.Unavailable, format, a...)
}

// DataLoss indicates unrecoverable data loss or corruption.
func DataLoss(format string, a ...interface{}) *CodeError {
	return makeError(codes.DataLoss, format, a...)
}

// Unauthenticated indicates the request does not have valid
// authentication credentials for the operation.
func Unauthenticated(format string, a ...interface{}) *CodeError {
	return makeError(codes.Unauthenticated, format, a...)
}
