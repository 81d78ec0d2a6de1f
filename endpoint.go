package apifit

// Endpoint describes one remote method of the API. Endpoints are
// declared once, validated by NewClient and never mutated afterwards,
// so all calls share the same descriptor.
type Endpoint struct {
	// Name identifies the endpoint within the client. Must be unique.
	Name string

	// HTTP method.
	Method string

	// Path is the URL template relative to the base URL. It may contain
	// {name} placeholders matching declared argument names and may embed
	// a query part, e.g. "get?value={value}".
	Path string

	// PathFn computes the relative path from the call arguments.
	// Exactly one of Path and PathFn must be set.
	PathFn *StringSpec

	// Args lists argument names of the method in positional order.
	Args []string

	// Per-axis configuration. A nil axis contributes nothing.
	Params  *ValuesSpec
	Headers *ValuesSpec
	Cookies *ValuesSpec
	Auth    *AuthSpec

	// Body declares a JSON request body, literal or computed.
	Body *BodySpec

	// Hint is an opaque token passed unchanged to the RaiseErrors,
	// Decode and Extract hooks. The client never inspects it.
	Hint interface{}

	// Returns declares the shape of the response body. If nil, the
	// response body is not decoded.
	Returns Type
}

// Values is one string-to-string axis: query parameters, headers or
// cookies.
type Values map[string]string

// Credentials is a basic auth user/password pair.
type Credentials struct {
	User     string
	Password string
}

// ValuesSpec configures a headers, params or cookies axis: either a
// literal Values or a function of named call arguments.
type ValuesSpec struct {
	value    Values
	fn       func(args Args) Values
	argNames []string
}

// StaticValues declares a literal axis value.
func StaticValues(value Values) *ValuesSpec {
	return &ValuesSpec{value: value}
}

// ValuesFrom declares an axis computed from the named call arguments.
// The function receives a view restricted to exactly those arguments.
// Names not declared in Endpoint.Args fail at NewClient.
func ValuesFrom(fn func(args Args) Values, argNames ...string) *ValuesSpec {
	return &ValuesSpec{fn: fn, argNames: argNames}
}

// AuthSpec configures the basic auth axis.
type AuthSpec struct {
	value    *Credentials
	fn       func(args Args) Credentials
	argNames []string
}

// StaticAuth declares literal credentials.
func StaticAuth(user, password string) *AuthSpec {
	return &AuthSpec{value: &Credentials{User: user, Password: password}}
}

// AuthFrom declares credentials computed from the named call arguments.
func AuthFrom(fn func(args Args) Credentials, argNames ...string) *AuthSpec {
	return &AuthSpec{fn: fn, argNames: argNames}
}

// StringSpec configures a computed URL path.
type StringSpec struct {
	fn       func(args Args) string
	argNames []string
}

// PathFrom declares a relative path computed from the named call
// arguments. The result is used verbatim, placeholders are not
// substituted in it.
func PathFrom(fn func(args Args) string, argNames ...string) *StringSpec {
	return &StringSpec{fn: fn, argNames: argNames}
}

// BodySpec configures the request body axis. The resolved value is
// JSON-encoded.
type BodySpec struct {
	value    interface{}
	fn       func(args Args) interface{}
	argNames []string
}

// StaticBody declares a literal request body.
func StaticBody(value interface{}) *BodySpec {
	return &BodySpec{value: value}
}

// BodyFrom declares a request body computed from the named call
// arguments.
func BodyFrom(fn func(args Args) interface{}, argNames ...string) *BodySpec {
	return &BodySpec{fn: fn, argNames: argNames}
}

// validate panics with *DeclarationError on an invalid declaration.
// Called by NewClient, so broken endpoints never reach call time.
func (e *Endpoint) validate() {
	if e.Name == "" {
		panic(declErrf("", "endpoint has no name"))
	}
	if e.Method == "" {
		panic(declErrf(e.Name, "HTTP method is not set"))
	}
	if e.Path == "" && e.PathFn == nil {
		panic(declErrf(e.Name, "one of Path and PathFn must be set"))
	}
	if e.Path != "" && e.PathFn != nil {
		panic(declErrf(e.Name, "Path and PathFn are mutually exclusive"))
	}

	declared := make(map[string]bool, len(e.Args))
	for _, name := range e.Args {
		if name == "" {
			panic(declErrf(e.Name, "empty argument name"))
		}
		if declared[name] {
			panic(declErrf(e.Name, "duplicate argument name %q", name))
		}
		declared[name] = true
	}

	if e.Path != "" {
		for _, placeholder := range findPlaceholders(e.Path) {
			if !declared[placeholder] {
				panic(declErrf(e.Name, "URL template references unbound placeholder {%s}", placeholder))
			}
		}
	}

	checkAxisArgs := func(axis string, fn interface{}, argNames []string) {
		if fn == nil {
			panic(declErrf(e.Name, "%s axis: nil function", axis))
		}
		for _, name := range argNames {
			if !declared[name] {
				panic(declErrf(e.Name, "%s axis references unknown argument %q", axis, name))
			}
		}
	}
	if e.PathFn != nil {
		checkAxisArgs("path", e.PathFn.fn, e.PathFn.argNames)
	}
	for _, axis := range []struct {
		name string
		spec *ValuesSpec
	}{
		{"params", e.Params},
		{"headers", e.Headers},
		{"cookies", e.Cookies},
	} {
		if axis.spec == nil || axis.spec.fn == nil && axis.spec.value != nil {
			continue
		}
		checkAxisArgs(axis.name, axis.spec.fn, axis.spec.argNames)
	}
	if e.Auth != nil && e.Auth.value == nil {
		checkAxisArgs("auth", e.Auth.fn, e.Auth.argNames)
	}
	if e.Body != nil && e.Body.fn == nil && e.Body.value == nil {
		panic(declErrf(e.Name, "body axis: neither value nor function is set"))
	}
	if e.Body != nil && e.Body.fn != nil {
		checkAxisArgs("body", e.Body.fn, e.Body.argNames)
	}
}
