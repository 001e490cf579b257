package resilience

import (
	"errors"
	"net"
	"net/http"
	"syscall"
)

// Transient reports whether err looks like a condition that may clear on its
// own: rate limiting, server-side failures, network timeouts, and dropped
// connections. Errors carrying an HTTPStatus method are classified by status
// code.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	var sc interface{ HTTPStatus() int }
	if errors.As(err, &sc) {
		return RetryableStatus(sc.HTTPStatus())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED)
}

// RetryableStatus reports whether an HTTP status code is worth a retry.
func RetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
