/*
Package apifit is a declarative HTTP API client toolkit. You describe a
remote endpoint once, as a value: its URL template, how each request
axis (query params, headers, cookies, basic auth, body) is obtained
from the call arguments, and the shape the response must fit into. The
client then builds the request from the actual arguments of each call,
sends it and fits the decoded response body into the declared shape.

Declare endpoints in a table:

	type HttpGet struct {
		Args    map[string]string `json:"args"`
		Headers map[string]string `json:"headers"`
		URL     string            `json:"url"`
	}

	endpoints := []apifit.Endpoint{
		{
			Name:    "Get",
			Method:  http.MethodGet,
			Path:    "get?value={value}",
			Args:    []string{"value"},
			Returns: apifit.TypeOf(HttpGet{}),
		},
		{
			Name:    "Login",
			Method:  http.MethodGet,
			Path:    "basic-auth/{user}/{password}",
			Args:    []string{"user", "password"},
			Auth: apifit.AuthFrom(func(args apifit.Args) apifit.Credentials {
				return apifit.Credentials{
					User:     args.String("user"),
					Password: args.String("password"),
				}
			}, "user", "password"),
			Returns: apifit.TypeOf(HttpAuth{}),
		},
	}

{name} placeholders of the URL template are substituted with the
stringified bound arguments. Each axis is either a literal value
(StaticValues, StaticAuth, StaticBody) or a function of named call
arguments (ValuesFrom, AuthFrom, PathFrom, BodyFrom); both forms
produce identical requests for identical values. Client-level defaults
(DefaultHeaders, DefaultParams, DefaultCookies, BasicAuth) merge with
endpoint-level values key by key, the endpoint always winning.

Create a client and call endpoints by name:

	client := apifit.NewClient(endpoints, "https://httpbin.org/")
	var get HttpGet
	err := client.Call(ctx, &get, "Get", 42)

NewClient validates every declaration and panics with
*DeclarationError on the first invalid one (unknown placeholder, axis
function referring to an undeclared argument, duplicate names), so
declaration problems never surface during calls.

The declared return shape is a Type. Derive it from a Go value with
TypeOf, or build it explicitly with String, Int, Float, Bool,
Optional, Sequence, Mapping, Record and Union. Fitting is strict about
primitive kinds (no "42" to 42 coercion), ignores unknown keys of
records, tries union variants in declaration order and reports the
first mismatch with its full path, e.g. "user.posts[2].id".

The response pipeline of a call is linear: check status, decode body,
fit tree. Each stage is an overridable hook (WithHooks) receiving the
endpoint's opaque Hint, and each default is exported (
DefaultRaiseErrors, DefaultDecode, DefaultExtract) so an override can
delegate to it. CSVDecode and ProtoDecode are ready-made Decode hooks
for non-JSON bodies.

Errors surface to the caller as one of four kinds: *DeclarationError
(panic at declaration), *TransportError (network failure or
non-success status, wrapping a code error from the errors
subpackage), *DecodeError and *FitError.

The transport is pluggable through the HttpClient interface. The
debugclient, closingclient and retryclient subpackages wrap any
HttpClient with curl-style request logging, cancellation of in-flight
calls on Close, and bounded retries with backoff.
*/
package apifit
