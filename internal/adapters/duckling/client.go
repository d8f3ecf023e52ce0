// Package duckling provides a resilient client for a Duckling HTTP server and decodes its
// answers into the temporal value model
package duckling

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	perr "datemerge/internal/platform/errors"
	"datemerge/internal/platform/logger"
)

const (
	baseURLDefault   = "http://localhost:8000"
	defaultTimeout   = 5 * time.Second
	defaultUA        = "datemerge"
	defaultMaxRetry  = 3
	defaultRetryBase = 200 * time.Millisecond
	maxBackoff       = 30 * time.Second
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transport errors and transient responses
	MaxRetries int
	RetryBase  time.Duration

	// RPS <= 0 disables the outbound limiter
	RPS   float64
	Burst int
}

// Request is one parse call
type Request struct {
	Lang language.Tag
	Text string
	Dims []string
	Ref  time.Time
}

// Client is a Duckling REST client with retries and an outbound rate limit
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if o.RPS > 0 {
		if o.Burst <= 0 {
			o.Burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(o.RPS), o.Burst)
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		limiter: lim,
		log:     *logger.Named("duckling"),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// Parse posts req to /parse and returns the raw entries
func (c *Client) Parse(ctx context.Context, req Request) ([]Entry, error) {
	form := formOf(req)
	endpoint := c.opts.BaseURL + "/parse"
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeTooManyRequests, "duckling limiter")
		}

		hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "duckling new request failed")
		}
		hreq.Header.Set("User-Agent", c.opts.UserAgent)
		hreq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		hreq.Header.Set("Accept", "application/json")

		start := c.now()
		resp, err := c.http.Do(hreq)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "duckling do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Msg("duckling transport error retrying")
			if err := c.sleep(ctx, back); err != nil {
				return nil, err
			}
			attempts++
			continue
		}

		c.log.Debug().
			Str("lang", req.Lang.String()).
			Strs("dims", req.Dims).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("duckling http response")

		switch resp.StatusCode {
		case http.StatusOK:
			var out []Entry
			err := json.NewDecoder(resp.Body).Decode(&out)
			_ = drainAndClose(resp.Body)
			if err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "duckling decode response")
			}
			return out, nil
		case http.StatusTooManyRequests:
			wait := retryAfter(resp.Header)
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, &StatusError{Status: resp.StatusCode, Err: perr.Newf(perr.ErrorCodeTooManyRequests, "duckling rate limited")}
			}
			c.log.Warn().Dur("sleep", wait).Msg("duckling rate limited backing off")
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			attempts++
			continue
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, &StatusError{Status: resp.StatusCode, Err: perr.Newf(perr.ErrorCodeUnavailable, "duckling transient server error")}
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("duckling transient error retrying")
			if err := c.sleep(ctx, back); err != nil {
				return nil, err
			}
			attempts++
			continue
		default:
			// read a small tail for diagnostics then return
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, &StatusError{
				Status: resp.StatusCode,
				Body:   string(body),
				Err:    perr.Newf(perr.ErrorCodeUnknown, "duckling unexpected status %d body %s", resp.StatusCode, string(body)),
			}
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	ms := int64(c.opts.RetryBase/time.Millisecond) << uint(attempt)
	if max := int64(maxBackoff / time.Millisecond); ms > max || ms <= 0 {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

// sleepCtx waits for d, returning early with ctx's error
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// formOf encodes req the way the Duckling server expects it
func formOf(req Request) url.Values {
	dims, _ := json.Marshal(req.Dims)
	form := url.Values{}
	form.Set("locale", localeOf(req.Lang))
	form.Set("text", req.Text)
	form.Set("dims", string(dims))
	if !req.Ref.IsZero() {
		form.Set("reftime", strconv.FormatInt(req.Ref.UnixMilli(), 10))
		if tz := zoneName(req.Ref); tz != "" {
			form.Set("tz", tz)
		}
	}
	return form
}

// zoneName names the zone of t for Duckling
// fixed offsets from RFC 3339 references have no name, whole hours map to Etc/GMT zones
// whose sign is inverted, other offsets are left out
func zoneName(t time.Time) string {
	if name := t.Location().String(); name != "" && name != "Local" {
		return name
	}
	_, off := t.Zone()
	if off%3600 != 0 {
		return ""
	}
	switch h := off / 3600; {
	case h == 0:
		return "Etc/GMT"
	case h > 0:
		return "Etc/GMT-" + strconv.Itoa(h)
	default:
		return "Etc/GMT+" + strconv.Itoa(-h)
	}
}

// localeOf renders tag as lang_REGION, guessing the region when the tag has none
func localeOf(tag language.Tag) string {
	base, _ := tag.Base()
	region, _ := tag.Region()
	if region.String() == "ZZ" {
		return base.String()
	}
	return base.String() + "_" + region.String()
}
