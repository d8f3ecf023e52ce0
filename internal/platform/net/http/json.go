package http

import (
	"net/http"

	"datemerge/internal/platform/net/http/bind"
)

// JSONHandler decodes and validates a T body before calling fn
// decode and validation failures never reach fn
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		return result(fn(r, in))
	})
}

// JSONHandlerNoBody calls fn without reading a body
func JSONHandlerNoBody(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response { return result(fn(r)) })
}

func result(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}
