package gitlab

// Config holds configuration for the GitLab inventory source.
type Config struct {
	// BaseURL is the GitLab instance root (change for self-hosted instances).
	BaseURL string `mapstructure:"base_url" default:"https://gitlab.com"`
	// Token is a personal access token with the read_api scope.
	Token string `mapstructure:"token" default:""`
	// Group is the full group path, e.g. "company/work" for nested groups.
	Group string `mapstructure:"group" default:""`
	// PerPage is the page size for list calls (max 100).
	PerPage int `mapstructure:"per_page" default:"100"`
	// RequestsPerSecond throttles API calls. Zero disables throttling.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"10"`
}
