package apifit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ResolvedRequest is the outcome of resolving every axis of one call:
// the final URL, the merged query, headers and cookies, the optional
// credentials and the encoded body. It is built once per call, never
// mutated and consumed exactly once by the transport.
type ResolvedRequest struct {
	Method string

	// URL is the final URL including the encoded query. The query is
	// encoded with url.Values.Encode, so the key order is deterministic.
	URL string

	Query   url.Values
	Headers Values
	Cookies Values
	Auth    *Credentials

	// Body is the JSON-encoded request body, nil if the endpoint
	// declares none.
	Body        []byte
	ContentType string
}

// assembleRequest resolves all axes of the endpoint against the bound
// arguments and combines them with the client-level defaults. Pure
// construction, no side effects.
func (c *Client) assembleRequest(e *Endpoint, args Args) (*ResolvedRequest, error) {
	relPath := resolvePath(e, args)
	full := joinBaseURL(c.baseURL, relPath)
	pathPart, rawQuery, _ := strings.Cut(full, "?")

	templateQuery, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query part of URL %q: %w", full, err)
	}

	// Client defaults first, then query pairs from the URL template,
	// then the params axis. Later levels win key by key.
	query := make(url.Values, len(c.params)+len(templateQuery))
	for k, v := range c.params {
		query.Set(k, v)
	}
	for k, vs := range templateQuery {
		query[k] = vs
	}
	for k, v := range resolveValues(e.Params, args) {
		query.Set(k, v)
	}

	urlStr := pathPart
	if encoded := query.Encode(); encoded != "" {
		urlStr += "?" + encoded
	}

	auth := resolveAuth(e.Auth, args)
	if auth == nil && c.auth != nil {
		creds := *c.auth
		auth = &creds
	}

	req := &ResolvedRequest{
		Method:  e.Method,
		URL:     urlStr,
		Query:   query,
		Headers: mergeValues(c.headers, resolveValues(e.Headers, args)),
		Cookies: mergeValues(c.cookies, resolveValues(e.Cookies, args)),
		Auth:    auth,
	}

	if e.Body != nil {
		body, err := json.Marshal(resolveBody(e.Body, args))
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		req.Body = body
		req.ContentType = "application/json"
	}

	return req, nil
}

// httpRequest converts the resolved request into *http.Request. The
// body gets a GetBody so retrying transports can replay it. Every
// request carries a fresh X-Request-Id.
func (r *ResolvedRequest) httpRequest(ctx context.Context) (*http.Request, error) {
	request, err := http.NewRequestWithContext(ctx, r.Method, r.URL, nil)
	if err != nil {
		return nil, err
	}

	for _, k := range sortedKeys(r.Headers) {
		request.Header.Set(k, r.Headers[k])
	}
	for _, name := range sortedKeys(r.Cookies) {
		request.AddCookie(&http.Cookie{Name: name, Value: r.Cookies[name]})
	}
	if r.Auth != nil {
		request.SetBasicAuth(r.Auth.User, r.Auth.Password)
	}

	if r.Body != nil {
		body := bytes.NewReader(r.Body)
		snapshot := *body
		request.ContentLength = int64(len(r.Body))
		request.Body = io.NopCloser(body)
		request.GetBody = func() (io.ReadCloser, error) {
			b := snapshot
			return io.NopCloser(&b), nil
		}
		request.Header.Set("Content-Type", r.ContentType)
	}

	request.Header.Set("X-Request-Id", uuid.NewString())
	return request, nil
}

func sortedKeys(values Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
