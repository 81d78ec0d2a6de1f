package retryclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsEventually(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, "ok")
	}))
	t.Cleanup(server.Close)

	client, err := New(http.DefaultClient, MaxAttempts(5), Backoff(time.Millisecond, 10*time.Millisecond))
	require.NoError(t, err)
	defer client.CloseIdleConnections()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	res, err := client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
	require.Equal(t, int32(3), attempts.Load())
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, err := New(http.DefaultClient, MaxAttempts(2), Backoff(time.Millisecond, 10*time.Millisecond))
	require.NoError(t, err)
	defer client.CloseIdleConnections()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	res, err := client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.Equal(t, int32(2), attempts.Load())
}

func TestNonRetryableStatusReturnsImmediately(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client, err := New(http.DefaultClient, MaxAttempts(5), Backoff(time.Millisecond, 10*time.Millisecond))
	require.NoError(t, err)
	defer client.CloseIdleConnections()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	res, err := client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Equal(t, int32(1), attempts.Load())
}

func TestBodyReplayedOnRetry(t *testing.T) {
	var attempts atomic.Int32
	bodies := make(chan string, 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies <- string(body)
		if attempts.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}))
	t.Cleanup(server.Close)

	client, err := New(http.DefaultClient, MaxAttempts(3), Backoff(time.Millisecond, 10*time.Millisecond))
	require.NoError(t, err)
	defer client.CloseIdleConnections()

	req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader(`{"value":42}`))
	require.NoError(t, err)

	res, err := client.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	require.Equal(t, `{"value":42}`, <-bodies)
	require.Equal(t, `{"value":42}`, <-bodies)
}

func TestCancellationDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client, err := New(http.DefaultClient, MaxAttempts(10), Backoff(10*time.Second, time.Minute))
	require.NoError(t, err)
	defer client.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	t1 := time.Now()
	_, err = client.Do(req)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(t1), time.Second)
}

func TestCustomRetryable(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusConflict)
	}))
	t.Cleanup(server.Close)

	client, err := New(http.DefaultClient,
		MaxAttempts(2),
		Backoff(time.Millisecond, 10*time.Millisecond),
		Retryable(func(res *http.Response, err error) bool {
			return err != nil || res.StatusCode == http.StatusConflict
		}))
	require.NoError(t, err)
	defer client.CloseIdleConnections()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	res, err := client.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, int32(2), attempts.Load())
}

func TestParseRetryAfter(t *testing.T) {
	response := func(value string) *http.Response {
		res := &http.Response{Header: http.Header{}}
		if value != "" {
			res.Header.Set("Retry-After", value)
		}
		return res
	}

	require.Equal(t, time.Duration(0), parseRetryAfter(response("")))
	require.Equal(t, 2*time.Second, parseRetryAfter(response("2")))
	require.Equal(t, time.Duration(0), parseRetryAfter(response("garbage")))

	// A date in the past means no extra delay.
	past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
	require.Equal(t, time.Duration(0), parseRetryAfter(response(past)))

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	require.Greater(t, parseRetryAfter(response(future)), 50*time.Minute)
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	client, err := New(http.DefaultClient, Backoff(100*time.Millisecond, time.Second))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		first := client.backoff(0, 0)
		require.GreaterOrEqual(t, first, 100*time.Millisecond)
		require.LessOrEqual(t, first, 150*time.Millisecond)
	}

	// With a large attempt number the cap wins over the exponent.
	require.Equal(t, time.Second, client.backoff(20, 0))

	// An explicit Retry-After overrides the computed backoff.
	require.Equal(t, 3*time.Second, client.backoff(0, 3*time.Second))
}
