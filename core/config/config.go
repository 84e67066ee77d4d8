package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"repo-reconciler/core/database"
	"repo-reconciler/core/logger"
	"repo-reconciler/core/server"
	"repo-reconciler/core/snapshot"
	"repo-reconciler/core/storage"
	"repo-reconciler/feature/github"
	"repo-reconciler/feature/gitlab"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissing is returned when a required setting is empty.
var ErrMissing = errors.New("missing required configuration")

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// GitHub holds configuration for the GitHub inventory source.
	GitHub github.Config `mapstructure:"github"`
	// GitLab holds configuration for the GitLab inventory source.
	GitLab gitlab.Config `mapstructure:"gitlab"`
	// Reports holds snapshot and report file names.
	Reports Reports `mapstructure:"reports"`
	// Enrich holds configuration for the enrichment pool.
	Enrich Enrich `mapstructure:"enrich"`
	// Snapshot selects where snapshots are stored.
	Snapshot snapshot.Config `mapstructure:"snapshot"`
	// Storage holds configuration for the S3/MinIO snapshot backend.
	Storage storage.Config `mapstructure:"storage"`
	// Database holds configuration for the run-history database.
	Database database.Config `mapstructure:"database"`
	// Server holds configuration for the report HTTP server.
	Server server.Config `mapstructure:"server"`
}

// Reports names the snapshot and report objects.
type Reports struct {
	// GitHub is the GitHub inventory snapshot.
	GitHub string `mapstructure:"github" default:"github_repos_report.csv"`
	// GitLab is the GitLab inventory snapshot.
	GitLab string `mapstructure:"gitlab" default:"gitlab_projects_report.csv"`
	// Archive is the archive cross-check output.
	Archive string `mapstructure:"archive" default:"archive_crosscheck_report.csv"`
	// Staleness is the staleness comparison output.
	Staleness string `mapstructure:"staleness" default:"staleness_report.csv"`
	// Legacy is the legacy-project audit output.
	Legacy string `mapstructure:"legacy" default:"legacy_projects_report.csv"`
}

// Enrich configures the enrichment pool.
type Enrich struct {
	// Concurrency is the requested number of workers.
	Concurrency int `mapstructure:"concurrency" default:"8"`
	// MaxConcurrency caps Concurrency. It can lower, never raise, the hard cap of 16.
	MaxConcurrency int `mapstructure:"max_concurrency" default:"16"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. CI)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. GITLAB_TOKEN -> gitlab.token)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}

// ValidateGitHub checks the settings needed to harvest from GitHub.
func (c *Config) ValidateGitHub() error {
	return requireSettings(map[string]string{
		"GITHUB_TOKEN": c.GitHub.Token,
		"GITHUB_ORG":   c.GitHub.Org,
	})
}

// ValidateGitLab checks the settings needed to talk to GitLab.
func (c *Config) ValidateGitLab() error {
	return requireSettings(map[string]string{
		"GITLAB_TOKEN": c.GitLab.Token,
		"GITLAB_GROUP": c.GitLab.Group,
	})
}

// ValidateReports checks that both snapshot names are set.
func (c *Config) ValidateReports() error {
	return requireSettings(map[string]string{
		"REPORTS_GITHUB": c.Reports.GitHub,
		"REPORTS_GITLAB": c.Reports.GitLab,
	})
}

func requireSettings(settings map[string]string) error {
	var missing []string
	for name, value := range settings {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
}
