// Package config resolves harness settings from three layered sources:
// built-in defaults, an optional YAML file, and environment variables.
// Environment always wins, the file beats the defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the YAML file searched for in the working directory and
// then in the user's home directory.
const FileName = "gcstester.yaml"

// Environment variable names, checked after the file.
const (
	EnvGcloudPath        = "GCLOUD_PATH"
	EnvBucketName        = "TEST_BUCKET_NAME"
	EnvObjectPrefix      = "TEST_OBJECT_PREFIX"
	EnvKeyFilePath       = "KEY_FILE_PATH"
	EnvSignedURLDuration = "SIGNED_URL_DURATION"
	EnvChromePath        = "CHROME_PATH"
	EnvScreenshotDir     = "SCREENSHOT_DIR"
	EnvCloudSDKPython    = "CLOUDSDK_PYTHON"
)

// Config holds every setting the harness reads. All fields have working
// defaults except the service-account key, which only signing needs.
type Config struct {
	// GcloudPath is the gcloud binary to invoke, resolved via PATH
	// when not absolute.
	GcloudPath string `yaml:"gcloud_path"`

	// BucketName is the bucket exercised by object operations, without
	// the gs:// scheme.
	BucketName string `yaml:"bucket_name"`

	// ObjectPrefix namespaces every object a run creates so that
	// cleanup can remove them without touching foreign objects.
	ObjectPrefix string `yaml:"object_prefix"`

	// KeyFilePath is the service-account private key used by sign-url.
	KeyFilePath string `yaml:"key_file_path"`

	// SignedURLDuration is the validity window passed to sign-url.
	SignedURLDuration time.Duration `yaml:"signed_url_duration"`

	// ChromePath overrides browser auto-detection when set.
	ChromePath string `yaml:"chrome_path"`

	// ScreenshotDir is where page captures are written.
	ScreenshotDir string `yaml:"screenshot_dir"`

	// CloudSDKPython pins the Python interpreter gcloud runs under.
	// Forwarded to the child process environment when set.
	CloudSDKPython string `yaml:"cloudsdk_python"`
}

// fileConfig mirrors Config for YAML decoding. The duration is kept as a
// string so "1h" style values work, and absent fields stay distinguishable
// from explicit zero values.
type fileConfig struct {
	GcloudPath        string `yaml:"gcloud_path"`
	BucketName        string `yaml:"bucket_name"`
	ObjectPrefix      string `yaml:"object_prefix"`
	KeyFilePath       string `yaml:"key_file_path"`
	SignedURLDuration string `yaml:"signed_url_duration"`
	ChromePath        string `yaml:"chrome_path"`
	ScreenshotDir     string `yaml:"screenshot_dir"`
	CloudSDKPython    string `yaml:"cloudsdk_python"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		GcloudPath:        "gcloud",
		BucketName:        "example_bucket1sy",
		ObjectPrefix:      "test-object-",
		KeyFilePath:       "key.json",
		SignedURLDuration: time.Hour,
		ScreenshotDir:     "screenshots",
	}
}

// Load resolves the effective configuration: defaults, then the first
// config file found, then environment variables. A missing file is not
// an error; an unreadable or malformed one is.
func Load() (*Config, error) {
	cfg := Default()

	path, err := findFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile resolves configuration from an explicit file path plus the
// environment, skipping the search order.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findFile returns the first config file present in the search order,
// or "" when none exists.
func findFile() (string, error) {
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory is fine, the defaults still apply.
		return "", nil
	}
	candidate := filepath.Join(home, FileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}

	setString(&c.GcloudPath, fc.GcloudPath)
	setString(&c.BucketName, fc.BucketName)
	setString(&c.ObjectPrefix, fc.ObjectPrefix)
	setString(&c.KeyFilePath, fc.KeyFilePath)
	setString(&c.ChromePath, fc.ChromePath)
	setString(&c.ScreenshotDir, fc.ScreenshotDir)
	setString(&c.CloudSDKPython, fc.CloudSDKPython)

	if fc.SignedURLDuration != "" {
		d, err := time.ParseDuration(fc.SignedURLDuration)
		if err != nil {
			return fmt.Errorf("%w: signed_url_duration %q: %v", ErrInvalidConfig, fc.SignedURLDuration, err)
		}
		c.SignedURLDuration = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.GcloudPath, os.Getenv(EnvGcloudPath))
	setString(&c.BucketName, os.Getenv(EnvBucketName))
	setString(&c.ObjectPrefix, os.Getenv(EnvObjectPrefix))
	setString(&c.KeyFilePath, os.Getenv(EnvKeyFilePath))
	setString(&c.ChromePath, os.Getenv(EnvChromePath))
	setString(&c.ScreenshotDir, os.Getenv(EnvScreenshotDir))
	setString(&c.CloudSDKPython, os.Getenv(EnvCloudSDKPython))

	if v := os.Getenv(EnvSignedURLDuration); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, EnvSignedURLDuration, v, err)
		}
		c.SignedURLDuration = d
	}
	return nil
}

// Validate checks that every field required for object operations is set.
func (c *Config) Validate() error {
	switch {
	case c.GcloudPath == "":
		return fmt.Errorf("%w: gcloud_path", ErrMissingRequired)
	case c.BucketName == "":
		return fmt.Errorf("%w: bucket_name", ErrMissingRequired)
	case c.ObjectPrefix == "":
		return fmt.Errorf("%w: object_prefix", ErrMissingRequired)
	case c.SignedURLDuration <= 0:
		return fmt.Errorf("%w: signed_url_duration must be positive", ErrInvalidConfig)
	}
	return nil
}

// BucketURL returns the bucket in gs:// form.
func (c *Config) BucketURL() string {
	return "gs://" + c.BucketName
}

// ObjectURL returns the gs:// URL for an object name inside the bucket.
func (c *Config) ObjectURL(name string) string {
	return c.BucketURL() + "/" + name
}

// ExecEnv returns the extra environment entries injected into every
// gcloud invocation.
func (c *Config) ExecEnv() map[string]string {
	env := map[string]string{}
	if c.CloudSDKPython != "" {
		env[EnvCloudSDKPython] = c.CloudSDKPython
	}
	return env
}

// DurationFlag renders the signed URL lifetime in the compact form the
// sign-url subcommand expects, e.g. "1h" rather than "1h0m0s".
func (c *Config) DurationFlag() string {
	d := c.SignedURLDuration
	switch {
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return fmt.Sprintf("%ds", d/time.Second)
	}
}

// setString overwrites dst only when src is non-empty, preserving the
// lower-priority value otherwise.
func setString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
