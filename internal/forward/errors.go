package forward

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Error maps a dispatch failure to the status code and detail message the
// caller should receive. It is only produced before any response bytes have
// been written; mid-stream failures truncate the relay instead.
type Error struct {
	Code   int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify sorts outbound failures into the caller-facing taxonomy:
// timeouts become 504, transport failures 502, everything else 500.
func classify(err error) *Error {
	var nerr net.Error
	if (errors.As(err, &nerr) && nerr.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Code:   http.StatusGatewayTimeout,
			Detail: "Ollama backend timeout",
			Err:    err,
		}
	}

	var uerr *url.Error
	if errors.As(err, &uerr) && !errors.Is(err, context.Canceled) {
		return &Error{
			Code:   http.StatusBadGateway,
			Detail: fmt.Sprintf("Cannot connect to Ollama backend: %v", uerr.Err),
			Err:    err,
		}
	}

	return &Error{
		Code:   http.StatusInternalServerError,
		Detail: fmt.Sprintf("Proxy error: %v", err),
		Err:    err,
	}
}
