// Package debugclient wraps an HTTP client and logs every call: the
// request as a curl command, the response as a full dump. Credential
// headers are redacted before logging, so logs stay safe to share.
package debugclient

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"sync/atomic"

	"moul.io/http2curl"
)

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

// redactedHeaders are replaced with a placeholder in the logged curl
// command. They carry the auth axis of a request.
var redactedHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie"}

type DebugClient struct {
	impl HttpClient
	log  io.Writer
	n    atomic.Uint64
}

func New(impl HttpClient, log io.Writer) (*DebugClient, error) {
	return &DebugClient{
		impl: impl,
		log:  log,
	}, nil
}

func (c *DebugClient) Do(req *http.Request) (*http.Response, error) {
	n := c.n.Add(1)

	curl, err := http2curl.GetCurlCommand(redact(req))
	if err != nil {
		return nil, fmt.Errorf("http2curl.GetCurlCommand failed for %d: %w", n, err)
	}
	if _, err = fmt.Fprintf(c.log, "=== client request %d ===\n$ %s\n=== end of client request %d ===\n", n, curl, n); err != nil {
		return nil, fmt.Errorf("fmt.Fprintf(request) failed for %d: %w", n, err)
	}

	res, err := c.impl.Do(req)
	if err != nil {
		return nil, err
	}

	resDump, err := httputil.DumpResponse(res, true)
	if err != nil {
		return nil, fmt.Errorf("httputil.DumpResponse failed for %d: %w", n, err)
	}
	if _, err = fmt.Fprintf(c.log, "=== server response %d ===\n%s\n=== end of server response %d ===\n", n, string(resDump), n); err != nil {
		return nil, fmt.Errorf("fmt.Fprintf(response) failed for %d: %w", n, err)
	}

	return res, nil
}

// redact returns a shallow clone with credential headers masked. The
// original request is sent unchanged.
func redact(req *http.Request) *http.Request {
	clone := req.Clone(req.Context())
	clone.Body = nil
	if req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			clone.Body = body
		}
	}
	for _, h := range redactedHeaders {
		if clone.Header.Get(h) != "" {
			clone.Header.Set(h, "REDACTED")
		}
	}
	return clone
}

func (c *DebugClient) CloseIdleConnections() {
	c.impl.CloseIdleConnections()
}
