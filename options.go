package restcall

import (
	"log"

	"github.com/go-playground/validator/v10"
)

// Config carries settings of HTTPBackend. Build it with Options.
type Config struct {
	errorf        func(format string, args ...interface{})
	client        HttpClient
	authorization string
	maxBody       int64
	validate      *validator.Validate
}

// DefaultMaxBody is the default limit of response body size.
const DefaultMaxBody = 10 * 1024 * 1024

func NewDefaultConfig() *Config {
	return &Config{
		errorf:  log.Printf,
		maxBody: DefaultMaxBody,
	}
}

type Option func(*Config)

// ErrorLogger replaces the logger of secondary errors (e.g. a failure
// to close a response body). Default is log.Printf.
func ErrorLogger(logger func(format string, args ...interface{})) Option {
	return func(config *Config) {
		config.errorf = logger
	}
}

// CustomClient replaces the HTTP client used to run requests.
// The default client does not follow redirects.
func CustomClient(client HttpClient) Option {
	return func(config *Config) {
		config.client = client
	}
}

// AuthorizationHeader sets the value of the Authorization header put
// into every request that does not set it itself.
func AuthorizationHeader(authorization string) Option {
	return func(config *Config) {
		config.authorization = authorization
	}
}

// MaxBody limits the number of bytes read from a response body.
func MaxBody(maxBody int64) Option {
	return func(config *Config) {
		config.maxBody = maxBody
	}
}

// ValidateRequests runs the validator on struct body arguments before
// encoding them. A validation failure aborts the call locally.
func ValidateRequests(validate *validator.Validate) Option {
	return func(config *Config) {
		config.validate = validate
	}
}
