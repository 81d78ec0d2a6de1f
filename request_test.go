package apifit

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssembleRequestQueryMerge(t *testing.T) {
	client := NewClient([]Endpoint{
		{
			Name:   "Get",
			Method: http.MethodGet,
			Path:   "get?value={value}",
			Args:   []string{"value"},
			Params: StaticValues(Values{"extra": "1"}),
		},
	}, "https://httpbin.org/", DefaultParams(Values{"client": "x", "extra": "overridden"}))

	e := client.endpoints["Get"]
	args := bindArgs(e.Name, e.Args, []interface{}{42})

	resolved, err := client.assembleRequest(e, args)
	require.NoError(t, err)

	// url.Values.Encode sorts keys, so the final URL is deterministic.
	require.Equal(t, "https://httpbin.org/get?client=x&extra=1&value=42", resolved.URL)
	require.Equal(t, "42", resolved.Query.Get("value"))
	require.Equal(t, "1", resolved.Query.Get("extra"))
	require.Equal(t, "x", resolved.Query.Get("client"))
}

func TestAssembleRequestHeaderMerge(t *testing.T) {
	client := NewClient([]Endpoint{
		{
			Name:    "Get",
			Method:  http.MethodGet,
			Path:    "get",
			Headers: StaticValues(Values{"Answer": "42"}),
		},
	}, "https://httpbin.org/", DefaultHeaders(Values{"Foo": "Bar", "Answer": "nope"}))

	e := client.endpoints["Get"]
	resolved, err := client.assembleRequest(e, bindArgs(e.Name, nil, nil))
	require.NoError(t, err)
	require.Equal(t, Values{"Foo": "Bar", "Answer": "42"}, resolved.Headers)
}

func TestAssembleRequestLiteralAndComputedAgree(t *testing.T) {
	// The core property of axis resolution: a literal axis and an
	// equivalent computed axis yield identical resolved requests.
	literal := NewClient([]Endpoint{
		{
			Name:    "Get",
			Method:  http.MethodGet,
			Path:    "get",
			Args:    []string{"value"},
			Params:  StaticValues(Values{"value": "42"}),
			Headers: StaticValues(Values{"Answer": "42"}),
			Cookies: StaticValues(Values{"answer": "42"}),
		},
	}, "https://httpbin.org/")
	computed := NewClient([]Endpoint{
		{
			Name:   "Get",
			Method: http.MethodGet,
			Path:   "get",
			Args:   []string{"value"},
			Params: ValuesFrom(func(args Args) Values {
				return Values{"value": args.String("value")}
			}, "value"),
			Headers: ValuesFrom(func(args Args) Values {
				return Values{"Answer": args.String("value")}
			}, "value"),
			Cookies: ValuesFrom(func(args Args) Values {
				return Values{"answer": args.String("value")}
			}, "value"),
		},
	}, "https://httpbin.org/")

	el := literal.endpoints["Get"]
	ec := computed.endpoints["Get"]
	wantReq, err := literal.assembleRequest(el, bindArgs(el.Name, el.Args, []interface{}{42}))
	require.NoError(t, err)
	gotReq, err := computed.assembleRequest(ec, bindArgs(ec.Name, ec.Args, []interface{}{42}))
	require.NoError(t, err)
	require.Equal(t, wantReq, gotReq)
}

func TestAssembleRequestAuth(t *testing.T) {
	client := NewClient([]Endpoint{
		{
			Name:   "Login",
			Method: http.MethodGet,
			Path:   "basic-auth/{user}/{password}",
			Args:   []string{"user", "password"},
			Auth: AuthFrom(func(args Args) Credentials {
				return Credentials{User: args.String("user"), Password: args.String("password")}
			}, "user", "password"),
		},
		{
			Name:   "Plain",
			Method: http.MethodGet,
			Path:   "get",
		},
	}, "https://httpbin.org/", BasicAuth("client", "secret"))

	e := client.endpoints["Login"]
	resolved, err := client.assembleRequest(e, bindArgs(e.Name, e.Args, []interface{}{"foo", "bar"}))
	require.NoError(t, err)
	require.Equal(t, "https://httpbin.org/basic-auth/foo/bar", resolved.URL)
	// The endpoint's auth axis replaces client credentials wholesale.
	require.Equal(t, &Credentials{User: "foo", Password: "bar"}, resolved.Auth)

	// Without an endpoint auth axis the client credentials apply.
	plain := client.endpoints["Plain"]
	resolved, err = client.assembleRequest(plain, bindArgs(plain.Name, nil, nil))
	require.NoError(t, err)
	require.Equal(t, &Credentials{User: "client", Password: "secret"}, resolved.Auth)
}

func TestAssembleRequestBody(t *testing.T) {
	client := NewClient([]Endpoint{
		{
			Name:   "Create",
			Method: http.MethodPost,
			Path:   "anything",
			Args:   []string{"title"},
			Body: BodyFrom(func(args Args) interface{} {
				return map[string]string{"title": args.String("title")}
			}, "title"),
		},
	}, "https://httpbin.org/")

	e := client.endpoints["Create"]
	resolved, err := client.assembleRequest(e, bindArgs(e.Name, e.Args, []interface{}{"hello"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"title": "hello"}`, string(resolved.Body))
	require.Equal(t, "application/json", resolved.ContentType)
}

func TestHttpRequest(t *testing.T) {
	resolved := &ResolvedRequest{
		Method:      http.MethodPost,
		URL:         "https://httpbin.org/anything?value=42",
		Headers:     Values{"Answer": "42"},
		Cookies:     Values{"answer": "42"},
		Auth:        &Credentials{User: "foo", Password: "bar"},
		Body:        []byte(`{"title":"hello"}`),
		ContentType: "application/json",
	}

	req, err := resolved.httpRequest(context.Background())
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, req.Method)
	require.Equal(t, "https://httpbin.org/anything?value=42", req.URL.String())
	require.Equal(t, "42", req.Header.Get("Answer"))
	require.Equal(t, "application/json", req.Header.Get("Content-Type"))
	require.NotEmpty(t, req.Header.Get("X-Request-Id"))

	cookie, err := req.Cookie("answer")
	require.NoError(t, err)
	require.Equal(t, "42", cookie.Value)

	user, password, ok := req.BasicAuth()
	require.True(t, ok)
	require.Equal(t, "foo", user)
	require.Equal(t, "bar", password)

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	require.Equal(t, `{"title":"hello"}`, string(body))

	// The body can be replayed through GetBody.
	replay, err := req.GetBody()
	require.NoError(t, err)
	body, err = io.ReadAll(replay)
	require.NoError(t, err)
	require.Equal(t, `{"title":"hello"}`, string(body))
}
