package sase

import (
	"net/http"
	"net/url"
	"time"

	"github.com/netops-tools/sasectl/pkg/util"
)

// Defaults for Config.
const (
	DefaultBaseURL   = "https://api-qa.us.prismaaccess.paloaltonetworks.com"
	DefaultScope     = "Remote Networks"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "sasectl/1.0"
)

// Config configures a Client. Every field is an explicit value; nothing is
// read from the process environment here.
type Config struct {
	// BaseURL is the scheme and host of the configuration API.
	BaseURL string

	// Scope is sent as the "scope" query parameter on every request.
	Scope string

	// Token is the bearer credential shared by all requests.
	Token string

	// Timeout bounds each request, including reading the response body.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	UserAgent string

	// Transport overrides the base HTTP transport (tests use it to point
	// at httptest servers with custom TLS).
	Transport http.RoundTripper
}

// DefaultConfig returns a Config with defaults filled in except Token.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Scope:     DefaultScope,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	vb := &util.ValidationBuilder{}
	vb.Add(c.Token != "", "token is required")
	vb.Add(c.Scope != "", "scope is required")
	vb.Add(c.UserAgent != "", "user_agent is required")
	if c.Timeout <= 0 {
		vb.AddErrorf("timeout must be > 0, got %v", c.Timeout)
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		vb.AddErrorf("base_url %q is not an absolute URL", c.BaseURL)
	}
	return vb.Build()
}
