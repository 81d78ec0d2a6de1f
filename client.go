package apifit

import (
	"context"
	"io"
	"net/http"
	"reflect"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HttpClient is the transport collaborator. *http.Client implements
// it; so do the wrappers in debugclient, closingclient and
// retryclient.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

// Client calls remote methods declared as Endpoints. All configuration
// is read-only after NewClient and every call keeps its state local,
// so concurrent calls need no locking.
type Client struct {
	endpoints map[string]*Endpoint
	client    HttpClient
	baseURL   string
	logger    logrus.FieldLogger

	authorization string
	auth          *Credentials
	headers       Values
	params        Values
	cookies       Values

	maxBody int64
	limiter *rate.Limiter
	hooks   Hooks
}

// NewClient creates a client for the given endpoint table. Relative
// paths from the table are joined with baseURL. All declarations are
// validated here and NewClient panics with *DeclarationError on the
// first invalid one, so a constructed client cannot fail on
// declaration problems at call time.
func NewClient(endpoints []Endpoint, baseURL string, opts ...Option) *Client {
	config := newDefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	var client HttpClient = &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	if config.client != nil {
		client = config.client
	}

	endpointMap := make(map[string]*Endpoint, len(endpoints))
	for i := range endpoints {
		e := &endpoints[i]
		e.validate()
		if _, has := endpointMap[e.Name]; has {
			panic(declErrf(e.Name, "duplicate endpoint name"))
		}
		endpointMap[e.Name] = e
	}

	return &Client{
		endpoints:     endpointMap,
		client:        client,
		baseURL:       baseURL,
		logger:        config.logger,
		authorization: config.authorization,
		auth:          config.auth,
		headers:       config.headers,
		params:        config.params,
		cookies:       config.cookies,
		maxBody:       config.maxBody,
		limiter:       config.limiter,
		hooks:         config.hooks,
	}
}

// Call invokes the named endpoint with positional arguments bound to
// the endpoint's declared argument names and stores the fitted
// response value into out. Pass nil out to discard the response value.
//
// The call is one linear unit of work: resolve axes, assemble the
// request, send it, check the status, decode the body, fit the tree.
// The transport round-trip is the only blocking stage; canceling ctx
// aborts it and any partially decoded state is discarded.
//
// Unknown endpoint names and arity mismatches panic: they are
// programmer errors, not request failures.
func (c *Client) Call(ctx context.Context, out interface{}, name string, args ...interface{}) error {
	e, has := c.endpoints[name]
	if !has {
		panic("no registered endpoint with name " + name)
	}
	bound := bindArgs(e.Name, e.Args, args)

	resolved, err := c.assembleRequest(e, bound)
	if err != nil {
		return err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := resolved.httpRequest(ctx)
	if err != nil {
		return err
	}
	if c.authorization != "" {
		req.Header.Set("Authorization", c.authorization)
	}

	c.logger.WithFields(logrus.Fields{
		"endpoint":   e.Name,
		"method":     resolved.Method,
		"url":        resolved.URL,
		"request_id": req.Header.Get("X-Request-Id"),
	}).Debug("calling endpoint")

	res, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	res.Body = http.MaxBytesReader(nil, res.Body, c.maxBody)
	defer func() {
		if err := res.Body.Close(); err != nil {
			c.logger.WithError(err).Warn("failed to close response body")
		}
	}()

	raiseErrors := c.hooks.RaiseErrors
	if raiseErrors == nil {
		raiseErrors = DefaultRaiseErrors
	}
	if err := raiseErrors(ctx, res, e.Hint); err != nil {
		return err
	}

	if e.Returns == nil && out == nil {
		return nil
	}

	decode := c.hooks.Decode
	if decode == nil {
		decode = DefaultDecode
	}
	tree, err := decode(ctx, res, e.Hint)
	if err != nil {
		return err
	}

	extract := c.hooks.Extract
	if extract == nil {
		extract = DefaultExtract
	}
	value, err := extract(ctx, tree, e.Returns, e.Hint)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	return storeResult(out, value)
}

func storeResult(out, value interface{}) error {
	outValue := reflect.ValueOf(out)
	if outValue.Kind() != reflect.Ptr || outValue.IsNil() {
		panic("out must be a non-nil pointer")
	}
	target := outValue.Elem()
	if value == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(target.Type()) {
		return &FitError{
			Expected: target.Type().String(),
			Actual:   v.Type().String(),
		}
	}
	target.Set(v)
	return nil
}

// Close closes idle connections of the underlying transport and the
// transport itself if it is an io.Closer.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()

	if closer, ok := c.client.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}

	return nil
}
