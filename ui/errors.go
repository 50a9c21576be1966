package ui

import (
	"context"
	stderrors "errors"
	"net/http"

	"tablesense/internal/errors"
)

// statusFor maps application error codes to HTTP statuses
func statusFor(err error) int {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	if stderrors.Is(err, context.Canceled) {
		// client went away; nginx convention
		return 499
	}

	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeAccessDenied:
		return http.StatusForbidden
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeUpstreamQuery, errors.CodeExternalService:
		return http.StatusBadGateway
	case errors.CodeConfiguration:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newErrorBody(err error) errorBody {
	code := errors.GetCode(err)
	if code == "UNKNOWN" {
		code = errors.CodeInternalError
	}
	return errorBody{Error: err.Error(), Code: code}
}
