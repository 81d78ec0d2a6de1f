// Package errors provides error constructors classified by gRPC codes.
// A *CodeError maps to an HTTP status via HttpCode and back from an
// HTTP status via FromStatusCode, which is how the client classifies
// non-success responses.
package errors

import (
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
)

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

// Code returns the gRPC code the error was built with.
func (e *CodeError) Code() codes.Code {
	return e.code
}

func (e *CodeError) HttpCode() int {
	return runtime.HTTPStatusFromCode(e.code)
}

func makeError(code codes.Code, format string, a ...interface{}) *CodeError {
	return &CodeError{
		code: code,
		err:  fmt.Errorf(format, a...),
	}
}

// Canceled indicates the operation was canceled (typically by the caller).
func Canceled(format string, a ...interface{}) *CodeError {
	return makeError(codes.Canceled, format, a...)
}

// Unknown error, e.g. an error from an API that does not return enough
// information to classify it.
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

// NotFound means some requested entity was not found.
func NotFound(format string, a ...interface{}) *CodeError {
	return makeError(codes.NotFound, format, a...)
}

// AlreadyExists means an attempt to create an entity failed because one
// already exists.
func AlreadyExists(format string, a ...interface{}) *CodeError {
	return makeError(codes.AlreadyExists, format, a...)
}

// PermissionDenied indicates the caller does not have permission to
// execute the specified operation. Use Unauthenticated instead if the
// caller cannot be identified.
func PermissionDenied(format string, a ...interface{}) *CodeError {
	return makeError(codes.PermissionDenied, format, a...)
}

// ResourceExhausted indicates some resource has been exhausted, perhaps
// a per-user quota.
func ResourceExhausted(format string, a ...interface{}) *CodeError {
	return makeError(codes.ResourceExhausted, format, a...)
}

// FailedPrecondition indicates the operation was rejected because the
// system is not in a state required for the operation's execution.
func FailedPrecondition(format string, a ...interface{}) *CodeError {
	return makeError(codes.FailedPrecondition, format, a...)
}

// Aborted indicates the operation was aborted, typically due to a
// concurrency issue like a conflicting update.
func Aborted(format string, a ...interface{}) *CodeError {
	return makeError(codes.Aborted, format, a...)
}

// OutOfRange means the operation was attempted past the valid range.
func OutOfRange(format string, a ...interface{}) *CodeError {
	return makeError(codes.OutOfRange, format, a...)
}

// Unimplemented indicates the operation is not implemented or not
// supported/enabled in this service.
func Unimplemented(format string, a ...interface{}) *CodeError {
	return makeError(codes.Unimplemented, format, a...)
}

// Internal errors mean some invariants expected by the underlying
// system have been broken.
func Internal(format string, a ...interface{}) *CodeError {
	return makeError(codes.Internal, format, a...)
}

// Unavailable indicates the service is currently unavailable. This is
// most likely a transient condition and may be corrected by retrying
// with a backoff.
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

// FromStatusCode classifies an HTTP status code into a CodeError. It is
// the inverse of HttpCode for the statuses gRPC codes map to; other
// client errors become FailedPrecondition and other server errors
// become Internal.
func FromStatusCode(statusCode int, format string, a ...interface{}) *CodeError {
	var code codes.Code
	switch statusCode {
	case http.StatusBadRequest:
		code = codes.InvalidArgument
	case http.StatusUnauthorized:
		code = codes.Unauthenticated
	case http.StatusForbidden:
		code = codes.PermissionDenied
	case http.StatusNotFound:
		code = codes.NotFound
	case http.StatusConflict:
		code = codes.Aborted
	case http.StatusRequestedRangeNotSatisfiable:
		code = codes.OutOfRange
	case http.StatusTooManyRequests:
		code = codes.ResourceExhausted
	case 499:
		code = codes.Canceled
	case http.StatusNotImplemented:
		code = codes.Unimplemented
	case http.StatusServiceUnavailable:
		code = codes.Unavailable
	case http.StatusGatewayTimeout:
		code = codes.DeadlineExceeded
	default:
		switch {
		case statusCode >= 400 && statusCode < 500:
			code = codes.FailedPrecondition
		case statusCode >= 500:
			code = codes.Internal
		default:
			code = codes.Unknown
		}
	}
	return makeError(code, format, a...)
}
