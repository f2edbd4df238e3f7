package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Dataset source kinds.
const (
	SourceFiles = "files"
	SourceSQL   = "sql"
	SourceS3    = "s3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Dataset  DatasetConfig  `yaml:"dataset"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Calendar CalendarConfig `yaml:"calendar"`
}

type DatasetConfig struct {
	// Source is files, sql or s3. Empty picks whichever section is filled in.
	Source string `yaml:"source"`
	// Files are CSV paths or directories; relative entries resolve against
	// the config file's directory.
	Files       []string  `yaml:"files"`
	DateLayouts []string  `yaml:"date_layouts"`
	SQL         SQLConfig `yaml:"sql"`
	S3          S3Config  `yaml:"s3"`
}

type SQLConfig struct {
	Driver string `yaml:"driver"` // sqlite | postgres
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
}

type S3Config struct {
	Bucket         string `yaml:"bucket"`
	Prefix         string `yaml:"prefix"`
	Region         string `yaml:"region"`
	Endpoint       string `yaml:"endpoint"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	Env         string   `yaml:"env"`
	StaticDir   string   `yaml:"static_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

type CalendarConfig struct {
	// MIC of the exchange calendar used for business-day flags.
	MIC string `yaml:"mic"`
}

// Load reads path (may be empty for env-only setups), applies the .env file
// and environment overrides, fills defaults and validates.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		var err error
		if c, err = LoadUnchecked(path); err != nil {
			return nil, err
		}
	}
	loadDotEnv()
	c.ApplyEnv()
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked parses the YAML file and resolves relative paths, but does
// not apply the environment, defaults or validation.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Dataset.Files = resolvePaths(filepath.Dir(path), c.Dataset.Files)
	if c.Dataset.SQL.Driver == "sqlite" {
		c.Dataset.SQL.DSN = resolvePath(filepath.Dir(path), c.Dataset.SQL.DSN)
	}
	return &c, nil
}

// Prefer interpreting relative paths as relative to the config file directory,
// but fall back to the provided path (relative to cwd) if that doesn't exist.
func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) || strings.Contains(p, ":") {
		return p
	}
	cand := filepath.Join(base, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

func resolvePaths(base string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, resolvePath(base, p))
	}
	return out
}

func loadDotEnv() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).WithField("file", envFile).Warn("could not load env file")
	}
}

// ApplyEnv overlays environment variables onto c. Set variables win over
// the file.
func (c *Config) ApplyEnv() {
	setString(&c.Server.Port, "API_PORT")
	setString(&c.Server.Env, "API_ENV")
	setString(&c.Server.StaticDir, "STATIC_DIR")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	setString(&c.Calendar.MIC, "CALENDAR_MIC")

	if v := os.Getenv("BIDS_DATA_FILES"); v != "" {
		c.Dataset.Files = splitList(v)
	}
	if v := os.Getenv("BIDS_SQL_DSN"); v != "" {
		c.Dataset.SQL.DSN = v
	}
	setString(&c.Dataset.SQL.Driver, "BIDS_SQL_DRIVER")
	setString(&c.Dataset.SQL.Table, "BIDS_SQL_TABLE")
	setString(&c.Dataset.S3.Bucket, "BIDS_S3_BUCKET")
	setString(&c.Dataset.S3.Prefix, "BIDS_S3_PREFIX")
	setString(&c.Dataset.S3.Endpoint, "BIDS_S3_ENDPOINT")
	setString(&c.Dataset.S3.Region, "AWS_REGION")
	setString(&c.Dataset.S3.AccessKey, "BIDS_S3_ACCESS_KEY")
	setString(&c.Dataset.S3.SecretKey, "BIDS_S3_SECRET_KEY")
	setString(&c.Dataset.Source, "BIDS_SOURCE")

	if v := os.Getenv("API_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Server.RateLimit = f
		} else {
			logrus.WithField("value", v).Warn("ignoring invalid API_RATE_LIMIT")
		}
	}
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "./web/dist"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		c.Server.RateBurst = int(c.Server.RateLimit*2) + 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Calendar.MIC == "" {
		c.Calendar.MIC = "xnys"
	}
	if c.Dataset.SQL.DSN != "" && c.Dataset.SQL.Driver == "" {
		c.Dataset.SQL.Driver = "sqlite"
	}
	if c.Dataset.Source == "" {
		c.Dataset.Source = c.Dataset.inferSource()
	}
}

func (d DatasetConfig) inferSource() string {
	switch {
	case len(d.Files) > 0:
		return SourceFiles
	case d.SQL.DSN != "":
		return SourceSQL
	case d.S3.Bucket != "":
		return SourceS3
	}
	return ""
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch c.Dataset.Source {
	case SourceFiles:
		if len(c.Dataset.Files) == 0 {
			return errors.New("dataset.files is required for the files source")
		}
	case SourceSQL:
		if c.Dataset.SQL.DSN == "" {
			return errors.New("dataset.sql.dsn is required for the sql source")
		}
		if d := c.Dataset.SQL.Driver; d != "sqlite" && d != "postgres" {
			return fmt.Errorf("dataset.sql.driver %q is not supported (sqlite or postgres)", d)
		}
	case SourceS3:
		if c.Dataset.S3.Bucket == "" {
			return errors.New("dataset.s3.bucket is required for the s3 source")
		}
	case "":
		return errors.New("no dataset configured (set dataset.files, dataset.sql or dataset.s3)")
	default:
		return fmt.Errorf("dataset.source %q is not supported", c.Dataset.Source)
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if f := c.Logging.Format; f != "text" && f != "json" {
		return fmt.Errorf("logging.format %q must be text or json", f)
	}
	if c.Server.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	return nil
}

// Production reports whether the server runs in release mode.
func (c *Config) Production() bool {
	return c.Server.Env == "production"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
