package openairt

import "net/http"

// DefaultWebSocketURL is the default Realtime websocket endpoint.
const DefaultWebSocketURL = "wss://api.openai.com/v1/realtime"

// Client is the OpenAI Realtime API client.
type Client struct {
	config *clientConfig
}

// clientConfig holds the client configuration.
type clientConfig struct {
	apiKey       string
	organization string
	project      string
	wsURL        string
	httpClient   *http.Client
}

// Option configures the Client.
type Option func(*clientConfig)

// NewClient creates a new Realtime client. The API key is required.
func NewClient(apiKey string, opts ...Option) *Client {
	if apiKey == "" {
		panic("openairt: API key is required")
	}

	cfg := &clientConfig{
		apiKey:     apiKey,
		wsURL:      DefaultWebSocketURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{config: cfg}
}

// WithOrganization sets the organization ID for API requests.
func WithOrganization(orgID string) Option {
	return func(c *clientConfig) {
		c.organization = orgID
	}
}

// WithProject sets the project ID for API requests.
func WithProject(projectID string) Option {
	return func(c *clientConfig) {
		c.project = projectID
	}
}

// WithWebSocketURL overrides the websocket endpoint. Useful for tests.
func WithWebSocketURL(url string) Option {
	return func(c *clientConfig) {
		c.wsURL = url
	}
}

// WithHTTPClient sets a custom HTTP client. Its Timeout bounds the
// websocket handshake.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}
