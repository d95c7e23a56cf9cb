package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// RateLimitPerMinute caps how many requests a single client may issue
	// per minute against the API (the manual sync trigger in particular).
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute" default:"30"`
}
