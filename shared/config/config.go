package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort            = 8080
	defaultContentDir      = "content/blog"
	defaultUploadsDir      = "public/blog/uploads"
	defaultSiteURL         = "https://picabord.space"
	defaultSiteAuthor      = "PICABORD Team"
	defaultCMSUsername     = "admin"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultShutdownTimeout = 5 * time.Second
)

// Config holds the server settings. Values come from the environment,
// optionally seeded from a .env file, and may be overridden by CLI flags.
type Config struct {
	Port            int
	ContentDir      string
	UploadsDir      string
	SiteURL         string
	SiteAuthor      string
	CMSUsername     string
	CMSPassword     string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// CMSEnabled reports whether CMS login can succeed at all.
func (c *Config) CMSEnabled() bool {
	return c.CMSPassword != ""
}

// LoadDotEnv reads key=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// NewConfig builds a Config from the environment, falling back to defaults.
func NewConfig() (*Config, error) {
	port, err := intEnv("PORT", defaultPort)
	if err != nil {
		return nil, err
	}

	timeout, err := durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:            port,
		ContentDir:      stringEnv("CONTENT_DIR", defaultContentDir),
		UploadsDir:      stringEnv("UPLOADS_DIR", defaultUploadsDir),
		SiteURL:         strings.TrimSuffix(stringEnv("SITE_URL", defaultSiteURL), "/"),
		SiteAuthor:      stringEnv("SITE_AUTHOR", defaultSiteAuthor),
		CMSUsername:     stringEnv("CMS_USERNAME", defaultCMSUsername),
		CMSPassword:     os.Getenv("CMS_PASSWORD"),
		LogLevel:        strings.ToLower(stringEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:       strings.ToLower(stringEnv("LOG_FORMAT", defaultLogFormat)),
		ShutdownTimeout: timeout,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ContentDir == "" {
		return errors.New("content directory must not be empty")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: want console or json", c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout %s", c.ShutdownTimeout)
	}
	return nil
}

func stringEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
