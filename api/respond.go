package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

type codedError struct {
	err  error
	code int
	// retryAfter, in seconds, is sent as Retry-After when positive.
	retryAfter int
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

// CodedError attaches an HTTP status to err.
func CodedError(code int, err error) error {
	return &codedError{err: err, code: code}
}

// CodedErrorf formats a message and attaches an HTTP status to it.
func CodedErrorf(code int, format string, args ...any) error {
	return &codedError{err: fmt.Errorf(format, args...), code: code}
}

// withStatus overrides the 200 a handler responds with.
type withStatus struct {
	code int
	body any
}

func created(body any) any { return withStatus{code: http.StatusCreated, body: body} }

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

// RestHandler adapts a handler returning a body or an error. Errors become
// {"error": msg} with the status from CodedError, or 500 for anything else.
func RestHandler(logger *zap.Logger, handler func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := handler(r)
		if err != nil {
			code := http.StatusInternalServerError
			var cerr *codedError
			if errors.As(err, &cerr) {
				code = cerr.code
				if cerr.retryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(cerr.retryAfter))
				}
			}
			if code >= http.StatusInternalServerError {
				logger.Error("Request failed",
					zap.String("path", r.URL.Path),
					zap.Int("status", code),
					zap.Error(err))
			}
			writeJSON(logger, w, code, errorBody{Error: err.Error()})
			return
		}

		code := http.StatusOK
		if ws, ok := res.(withStatus); ok {
			code, res = ws.code, ws.body
		}
		if res == nil {
			res = struct{}{}
		}
		writeJSON(logger, w, code, res)
	}
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to write response body", zap.Error(err))
	}
}

// parseJSON decodes a JSON request body into T.
func parseJSON[T any](r *http.Request) (T, error) {
	var data T
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		return data, CodedErrorf(http.StatusBadRequest, "Invalid JSON body")
	}
	return data, nil
}

// bodyLimit caps request bodies at n bytes.
func bodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
