package duckling

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"
)

// StatusError wraps non-2xx HTTP responses from Duckling
type StatusError struct {
	Status int
	Body   string
	Err    error
}

// Error interface
func (e *StatusError) Error() string { return e.Err.Error() }

// Unwrap interface
func (e *StatusError) Unwrap() error { return e.Err }

// HTTPStatus interface
func (e *StatusError) HTTPStatus() int { return e.Status }

// retryAfter reads Retry-After as seconds or an HTTP date
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if sec, err := strconv.Atoi(v); err == nil {
		if sec <= 0 {
			return 0
		}
		return time.Duration(sec) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

// IsTransient reports whether err is a StatusError worth retrying later
func IsTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}
