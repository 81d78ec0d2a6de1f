// Package retryclient wraps an HTTP client with bounded retries and
// exponential backoff with jitter. Requests built by apifit carry
// GetBody, so bodies are replayed safely. Layer it under a client when
// the remote API is flaky:
//
//	rc, _ := retryclient.New(http.DefaultClient)
//	client := apifit.NewClient(endpoints, baseURL, apifit.HTTPClient(rc))
package retryclient

import (
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

type RetryClient struct {
	impl        HttpClient
	maxAttempts int
	minBackoff  time.Duration
	maxBackoff  time.Duration
	retryable   func(res *http.Response, err error) bool
}

type Option func(*RetryClient)

// MaxAttempts sets the total number of attempts, including the first
// one. Must be at least 1.
func MaxAttempts(n int) Option {
	return func(c *RetryClient) {
		c.maxAttempts = n
	}
}

// Backoff sets the backoff window. The delay before attempt k is
// min*2^k with up to 50% jitter, capped at max, unless the response
// carried a Retry-After header.
func Backoff(min, max time.Duration) Option {
	return func(c *RetryClient) {
		c.minBackoff = min
		c.maxBackoff = max
	}
}

// Retryable replaces the retry predicate. The default retries network
// errors, 429 and 5xx responses.
func Retryable(retryable func(res *http.Response, err error) bool) Option {
	return func(c *RetryClient) {
		c.retryable = retryable
	}
}

func defaultRetryable(res *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500
}

func New(impl HttpClient, opts ...Option) (*RetryClient, error) {
	c := &RetryClient{
		impl:        impl,
		maxAttempts: 3,
		minBackoff:  100 * time.Millisecond,
		maxBackoff:  5 * time.Second,
		retryable:   defaultRetryable,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var res *http.Response
	var err error

	for attempt := 0; ; attempt++ {
		if attempt > 0 && req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, bodyErr
			}
			req.Body = body
		}

		res, err = c.impl.Do(req)

		var retryAfter time.Duration
		if err == nil {
			if !c.retryable(res, nil) {
				return res, nil
			}
			retryAfter = parseRetryAfter(res)
		} else if !c.retryable(nil, err) {
			return nil, err
		}
		if attempt+1 >= c.maxAttempts {
			return res, err
		}

		// The body of a response being retried is never handed to the
		// caller; drain it so the connection can be reused.
		if res != nil {
			res.Body.Close()
		}

		select {
		case <-time.After(c.backoff(attempt, retryAfter)):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
}

func (c *RetryClient) backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}
	backoff := float64(c.minBackoff) * math.Pow(2, float64(attempt))
	backoff += backoff * 0.5 * rand.Float64()
	if backoff > float64(c.maxBackoff) {
		return c.maxBackoff
	}
	return time.Duration(backoff)
}

func parseRetryAfter(res *http.Response) time.Duration {
	header := res.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func (c *RetryClient) CloseIdleConnections() {
	c.impl.CloseIdleConnections()
}
