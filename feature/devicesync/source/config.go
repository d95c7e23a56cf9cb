package source

// Config holds configuration for one upstream inventory client.
type Config struct {
	// Endpoint is the base URL of the platform API.
	Endpoint string `mapstructure:"endpoint" default:""`
	// ClientID is the OAuth client credentials ID.
	ClientID string `mapstructure:"client_id" default:""`
	// ClientSecret is the OAuth client credentials secret.
	ClientSecret string `mapstructure:"client_secret" default:""`
	// PageSize is the number of devices requested per page.
	PageSize int `mapstructure:"page_size" default:"100"`
	// TimeoutSeconds is the HTTP timeout per request in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
