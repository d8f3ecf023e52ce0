package duckling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func testClient(t *testing.T, h http.HandlerFunc, o Options) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	o.BaseURL = srv.URL
	c := NewClient(o)
	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func parisRef(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return time.Date(2025, time.October, 6, 9, 0, 0, 0, loc)
}

func TestParse_SendsForm(t *testing.T) {
	ref := parisRef(t)
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/parse" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		want := map[string]string{
			"locale":  "fr_FR",
			"text":    "demain",
			"dims":    `["time","duration"]`,
			"reftime": fmt.Sprint(ref.UnixMilli()),
			"tz":      "Europe/Paris",
		}
		for k, v := range want {
			if got := r.PostForm.Get(k); got != v {
				t.Errorf("%s = %q, want %q", k, got, v)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"body":"demain","start":0,"end":6,"dim":"time","latent":false,"value":{"type":"value","value":"2025-10-07T00:00:00.000+02:00","grain":"day"}}]`))
	}, Options{})

	got, err := c.Parse(context.Background(), Request{Lang: language.French, Text: "demain", Dims: []string{"time", "duration"}, Ref: ref})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 || got[0].Dim != "time" || got[0].End != 6 {
		t.Fatalf("entries = %+v", got)
	}
}

func TestParse_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	c, slept := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}, Options{RetryBase: 100 * time.Millisecond, MaxRetries: 3})

	got, err := c.Parse(context.Background(), Request{Lang: language.French, Text: "demain", Dims: []string{"time"}})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("entries = %+v", got)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if fmt.Sprint(*slept) != fmt.Sprint(want) {
		t.Fatalf("slept %v, want %v", *slept, want)
	}
}

func TestParse_HonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	c, slept := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}, Options{})

	if _, err := c.Parse(context.Background(), Request{Lang: language.French, Text: "x", Dims: []string{"time"}}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(*slept) != 1 || (*slept)[0] != 3*time.Second {
		t.Fatalf("slept %v, want [3s]", *slept)
	}
}

func TestParse_GivesUp(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, Options{MaxRetries: 2})

	_, err := c.Parse(context.Background(), Request{Lang: language.French, Text: "x", Dims: []string{"time"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestParse_UnexpectedStatus(t *testing.T) {
	c, slept := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad locale"))
	}, Options{})

	_, err := c.Parse(context.Background(), Request{Lang: language.French, Text: "x", Dims: []string{"time"}})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.HTTPStatus() != http.StatusBadRequest || se.Body != "bad locale" {
		t.Fatalf("status error = %+v", se)
	}
	if IsTransient(err) {
		t.Fatal("400 must not be transient")
	}
	if len(*slept) != 0 {
		t.Fatalf("slept %v", *slept)
	}
}

func TestParse_BadJSON(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"`))
	}, Options{})

	if _, err := c.Parse(context.Background(), Request{Lang: language.French, Text: "x", Dims: []string{"time"}}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestParse_ContextCanceled(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Parse(ctx, Request{Lang: language.French, Text: "x", Dims: []string{"time"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("server called %d times", calls.Load())
	}
}

func TestBackoff_Capped(t *testing.T) {
	c := NewClient(Options{RetryBase: time.Second})
	if got := c.backoff(0); got != time.Second {
		t.Fatalf("backoff(0) = %v", got)
	}
	if got := c.backoff(3); got != 8*time.Second {
		t.Fatalf("backoff(3) = %v", got)
	}
	if got := c.backoff(10); got != maxBackoff {
		t.Fatalf("backoff(10) = %v, want cap", got)
	}
}

func TestLocaleOf(t *testing.T) {
	cases := map[string]string{
		"fr":    "fr_FR",
		"fr-CA": "fr_CA",
		"en":    "en_US",
		"de-AT": "de_AT",
	}
	for in, want := range cases {
		if got := localeOf(language.MustParse(in)); got != want {
			t.Errorf("localeOf(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	if got := retryAfter(h); got != 0 {
		t.Fatalf("empty = %v", got)
	}
	h.Set("Retry-After", "2")
	if got := retryAfter(h); got != 2*time.Second {
		t.Fatalf("seconds = %v", got)
	}
	h.Set("Retry-After", "soon")
	if got := retryAfter(h); got != 0 {
		t.Fatalf("garbage = %v", got)
	}
}

func TestFormOf_Zone(t *testing.T) {
	parse := func(v string) time.Time {
		t.Helper()
		ref, err := time.Parse(time.RFC3339, v)
		if err != nil {
			t.Fatalf("parse %q: %v", v, err)
		}
		return ref
	}
	tests := []struct {
		name string
		ref  time.Time
		want string
	}{
		{"named zone", parisRef(t), "Europe/Paris"},
		{"utc", time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC), "UTC"},
		{"east offset", parse("2025-10-06T00:30:00+02:00"), "Etc/GMT-2"},
		{"west offset", parse("2025-10-06T00:30:00-05:00"), "Etc/GMT+5"},
		{"half hour offset", parse("2025-10-06T00:30:00+05:30"), ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := formOf(Request{Lang: language.French, Text: "demain", Ref: tc.ref})
			got, present := form["tz"]
			if tc.want == "" {
				if present {
					t.Fatalf("tz sent as %q", got)
				}
				return
			}
			if form.Get("tz") != tc.want {
				t.Fatalf("tz = %q, want %q", form.Get("tz"), tc.want)
			}
			if form.Get("reftime") != fmt.Sprint(tc.ref.UnixMilli()) {
				t.Fatalf("reftime = %q", form.Get("reftime"))
			}
		})
	}
	if _, present := formOf(Request{Lang: language.French, Text: "demain"})["tz"]; present {
		t.Fatalf("tz sent without a reference")
	}
}

func TestParse_CancelStopsBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Options{BaseURL: srv.URL, RetryBase: 10 * time.Second, MaxRetries: 3})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := c.Parse(ctx, Request{Lang: language.French, Text: "demain", Dims: []string{"time"}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err %v, want deadline", err)
	}
	if waited := time.Since(start); waited > 5*time.Second {
		t.Fatalf("waited %s past the deadline", waited)
	}
}
