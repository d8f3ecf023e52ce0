// Package http provides the router seam and JSON envelope responses
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "datemerge/internal/platform/errors"
	pnet "datemerge/internal/platform/net"
)

// Envelope is the response body of every endpoint
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return-style handlers produce
// a Body holding an error is rendered as an error envelope
type Response struct {
	Status int
	Body   any
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	reqID := pnet.RequestID(r.Context())

	if err, ok := resp.Body.(error); ok && err != nil {
		status := perr.HTTPStatus(err)
		wr := perr.WireFrom(err)
		JSON(w, status, Envelope{
			StatusCode: status,
			Status:     stdhttp.StatusText(status),
			Code:       wr.Code,
			Error:      wr.Message,
			Field:      wr.Field,
			RequestID:  reqID,
		})
		return
	}

	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		RequestID:  reqID,
		Data:       resp.Body,
	})
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Error returns a response that maps err to its status and envelope
func Error(err error) Response { return Response{Body: err} }
