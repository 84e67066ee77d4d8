package github

// Config holds configuration for the GitHub inventory source.
type Config struct {
	// BaseURL is the REST API root.
	BaseURL string `mapstructure:"base_url" default:"https://api.github.com"`
	// Token is a personal access token with read access to the organization.
	Token string `mapstructure:"token" default:""`
	// Org is the organization whose repositories are harvested.
	Org string `mapstructure:"org" default:""`
	// PerPage is the page size for list calls (max 100).
	PerPage int `mapstructure:"per_page" default:"100"`
	// RequestsPerSecond throttles API calls. Zero disables throttling.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"10"`
}
