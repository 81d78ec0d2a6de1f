package apifit

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const defaultMaxBody = 10 * 1024 * 1024

type clientConfig struct {
	client        HttpClient
	logger        logrus.FieldLogger
	authorization string
	auth          *Credentials
	headers       Values
	params        Values
	cookies       Values
	maxBody       int64
	limiter       *rate.Limiter
	hooks         Hooks
}

func newDefaultConfig() *clientConfig {
	return &clientConfig{
		logger:  logrus.StandardLogger(),
		maxBody: defaultMaxBody,
	}
}

// Option configures a Client.
type Option func(*clientConfig)

// HTTPClient replaces the underlying transport. Use it to install
// debugclient, closingclient, retryclient or a custom *http.Client.
func HTTPClient(client HttpClient) Option {
	return func(config *clientConfig) {
		config.client = client
	}
}

// Logger replaces the default logrus standard logger.
func Logger(logger logrus.FieldLogger) Option {
	return func(config *clientConfig) {
		config.logger = logger
	}
}

// AuthorizationHeader sets the Authorization header on every request.
func AuthorizationHeader(authorization string) Option {
	return func(config *clientConfig) {
		config.authorization = authorization
	}
}

// BasicAuth sets client-level basic auth credentials, used when an
// endpoint declares no auth axis.
func BasicAuth(user, password string) Option {
	return func(config *clientConfig) {
		config.auth = &Credentials{User: user, Password: password}
	}
}

// DefaultHeaders sets client-level headers. Endpoint-level headers
// override them key by key.
func DefaultHeaders(headers Values) Option {
	return func(config *clientConfig) {
		config.headers = headers
	}
}

// DefaultParams sets client-level query parameters. Endpoint-level
// params override them key by key.
func DefaultParams(params Values) Option {
	return func(config *clientConfig) {
		config.params = params
	}
}

// DefaultCookies sets client-level cookies. Endpoint-level cookies
// override them key by key.
func DefaultCookies(cookies Values) Option {
	return func(config *clientConfig) {
		config.cookies = cookies
	}
}

// MaxBody limits the size of response bodies, in bytes.
func MaxBody(maxBody int64) Option {
	return func(config *clientConfig) {
		config.maxBody = maxBody
	}
}

// RateLimit makes Call wait for the limiter before sending, limiting
// outgoing requests to rps per second with the given burst.
func RateLimit(rps float64, burst int) Option {
	return func(config *clientConfig) {
		config.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHooks overrides response pipeline stages. Nil fields keep the
// defaults.
func WithHooks(hooks Hooks) Option {
	return func(config *clientConfig) {
		config.hooks = hooks
	}
}
