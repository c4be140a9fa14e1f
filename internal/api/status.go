package api

import (
	"net/http"

	"github.com/heysubinoy/kvrest/pkg/kv"
	"google.golang.org/grpc/codes"
)

// Status maps a store outcome to the HTTP status code of its response.
func Status[T any](o kv.Outcome[T]) int {
	return StatusOf(o.Err())
}

// StatusOf maps a failure reason to an HTTP status code.
// A nil error is a success.
//
// db-error and invalid-data are server faults. Every other reason, not-found
// included, is reported as 404; this catch-all also covers insert failures.
func StatusOf(err *kv.ReadError) int {
	if err == nil {
		return http.StatusOK
	}
	switch err.Reason {
	case kv.ReasonDBError, kv.ReasonInvalidData:
		return http.StatusInternalServerError
	default:
		return http.StatusNotFound
	}
}

// CodeOf is StatusOf for the gRPC gateway.
func CodeOf(err *kv.ReadError) codes.Code {
	switch StatusOf(err) {
	case http.StatusOK:
		return codes.OK
	case http.StatusNotFound:
		return codes.NotFound
	default:
		return codes.Internal
	}
}
