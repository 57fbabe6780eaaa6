// Package config loads mobscan settings from defaults, an optional YAML file,
// a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when MOBSCAN_CONFIG is unset and the file exists
const DefaultConfigFile = "mobscan.yml"

// Config holds every setting of the scanner, the dashboard server and the tools
type Config struct {
	Scanner ScannerConfig `yaml:"scanner"`
	Paths   PathsConfig   `yaml:"paths"`
	Server  ServerConfig  `yaml:"server"`
	Jenkins JenkinsConfig `yaml:"jenkins"`
	Signing SigningConfig `yaml:"signing"`
	Logging LoggingConfig `yaml:"logging"`
}

// ScannerConfig is the scanning service endpoint and credentials
type ScannerConfig struct {
	Host           string        `yaml:"host"`
	APIKey         string        `yaml:"api_key"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UploadTimeout  time.Duration `yaml:"upload_timeout"`
	ScanTimeout    time.Duration `yaml:"scan_timeout"`
}

// PathsConfig locates the inputs and outputs on disk
type PathsConfig struct {
	ScanDir    string `yaml:"scan_dir"`
	Database   string `yaml:"database"`
	LogFile    string `yaml:"log_file"`
	ReportsDir string `yaml:"reports_dir"`
	UploadDir  string `yaml:"upload_dir"`
}

// ServerConfig configures the dashboard API
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	DockerContainer string `yaml:"docker_container"`
	LogBacklog      int    `yaml:"log_backlog"`
}

// JenkinsConfig is the CI job the dashboard can trigger
type JenkinsConfig struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	APIToken string `yaml:"api_token"`
	Job      string `yaml:"job"`
	JobToken string `yaml:"job_token"`
}

// SigningConfig holds the OpenPGP keys for batch manifests.
// Empty paths disable signing and signature checks.
type SigningConfig struct {
	KeyPath       string `yaml:"key_path"`
	Passphrase    string `yaml:"passphrase"`
	PublicKeyPath string `yaml:"public_key_path"`
}

// LoggingConfig selects the minimum log level
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Scanner: ScannerConfig{
			RequestTimeout: 30 * time.Second,
			UploadTimeout:  60 * time.Second,
			ScanTimeout:    30 * time.Minute,
		},
		Paths: PathsConfig{
			ScanDir:    "./mobile_apps",
			Database:   "mobsf_scans.db",
			LogFile:    "mobsf_scans.log",
			ReportsDir: "./mobsf_reports",
			UploadDir:  "./manual_ipa_uploads",
		},
		Server: ServerConfig{
			Addr:            ":8765",
			DockerContainer: "mobsf",
			LogBacklog:      100,
		},
		Jenkins: JenkinsConfig{
			URL:      "http://localhost:8080",
			Job:      "mobsf-scan-test",
			JobToken: "START_SCAN",
		},
		Logging: LoggingConfig{Level: "debug"},
	}
}

// Load applies, in order: defaults, the YAML file, .env and the environment
func Load() (*Config, error) {
	cfg := Default()

	path, explicit := os.LookupEnv("MOBSCAN_CONFIG")
	if !explicit {
		path = DefaultConfigFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays the YAML file onto cfg
func (c *Config) loadFile(path string) error {
	//nolint:gosec // G304: config path is user-provided
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides settings from MOBSCAN_* and JENKINS_* variables
func (c *Config) applyEnv() error {
	stringVars := map[string]*string{
		"MOBSCAN_HOST":               &c.Scanner.Host,
		"MOBSCAN_API_KEY":            &c.Scanner.APIKey,
		"MOBSCAN_USERNAME":           &c.Scanner.Username,
		"MOBSCAN_PASSWORD":           &c.Scanner.Password,
		"MOBSCAN_SCAN_DIR":           &c.Paths.ScanDir,
		"MOBSCAN_DB":                 &c.Paths.Database,
		"MOBSCAN_LOG_FILE":           &c.Paths.LogFile,
		"MOBSCAN_REPORTS_DIR":        &c.Paths.ReportsDir,
		"MOBSCAN_UPLOAD_DIR":         &c.Paths.UploadDir,
		"MOBSCAN_ADDR":               &c.Server.Addr,
		"MOBSCAN_DOCKER_CONTAINER":   &c.Server.DockerContainer,
		"MOBSCAN_LOG_LEVEL":          &c.Logging.Level,
		"MOBSCAN_SIGNING_KEY":        &c.Signing.KeyPath,
		"MOBSCAN_SIGNING_PASSPHRASE": &c.Signing.Passphrase,
		"MOBSCAN_VERIFY_KEY":         &c.Signing.PublicKeyPath,
		"JENKINS_URL":                &c.Jenkins.URL,
		"JENKINS_USER":               &c.Jenkins.User,
		"JENKINS_API_TOKEN":          &c.Jenkins.APIToken,
		"JENKINS_JOB":                &c.Jenkins.Job,
		"JENKINS_JOB_TOKEN":          &c.Jenkins.JobToken,
	}
	for key, dst := range stringVars {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	var merr *multierror.Error
	durations := map[string]*time.Duration{
		"MOBSCAN_REQUEST_TIMEOUT": &c.Scanner.RequestTimeout,
		"MOBSCAN_UPLOAD_TIMEOUT":  &c.Scanner.UploadTimeout,
		"MOBSCAN_SCAN_TIMEOUT":    &c.Scanner.ScanTimeout,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				merr = multierror.Append(merr, fmt.Errorf("%s: %w", key, err))
				continue
			}
			*dst = d
		}
	}

	if v := os.Getenv("MOBSCAN_LOG_BACKLOG"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("MOBSCAN_LOG_BACKLOG: %w", err))
		} else {
			c.Server.LogBacklog = n
		}
	}

	return merr.ErrorOrNil()
}

// Validate reports every invalid general setting at once
func (c *Config) Validate() error {
	var merr *multierror.Error

	required := []struct{ key, value string }{
		{"paths.scan_dir", c.Paths.ScanDir},
		{"paths.database", c.Paths.Database},
		{"paths.reports_dir", c.Paths.ReportsDir},
		{"paths.upload_dir", c.Paths.UploadDir},
	}
	for _, r := range required {
		if r.value == "" {
			merr = multierror.Append(merr, fmt.Errorf("%s must not be empty", r.key))
		}
	}

	if c.Scanner.RequestTimeout <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("scanner.request_timeout must be positive"))
	}
	if c.Scanner.UploadTimeout <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("scanner.upload_timeout must be positive"))
	}
	if c.Scanner.ScanTimeout <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("scanner.scan_timeout must be positive"))
	}
	if c.Server.LogBacklog < 0 {
		merr = multierror.Append(merr, fmt.Errorf("server.log_backlog must not be negative"))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		merr = multierror.Append(merr, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	return merr.ErrorOrNil()
}

// ValidateScanner checks the settings the scan workflow needs on top of Validate
func (c *Config) ValidateScanner() error {
	var merr *multierror.Error
	if err := c.Validate(); err != nil {
		merr = multierror.Append(merr, err)
	}
	if c.Scanner.Host == "" {
		merr = multierror.Append(merr, fmt.Errorf("scanner.host must not be empty"))
	}
	if c.Scanner.APIKey == "" {
		merr = multierror.Append(merr, fmt.Errorf("scanner.api_key must not be empty"))
	}
	return merr.ErrorOrNil()
}
