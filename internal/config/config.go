// Package config contains utilities for loading configs
package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

const (
	defaultConfigFilePath = "/data/recipevault.yaml"
	appSecretBytes        = 32
	appSecretFilePerms    = 0o600
)

const (
	EnvProd = "PROD"
	EnvDev  = "DEV"
)

type AppSecretValue string

func (a *AppSecretValue) Validate() error {
	if a == nil {
		return errors.New("secret should not be nil")
	}
	if len([]byte(*a)) < appSecretBytes {
		return errors.New("secret should be at least 32 bytes")
	}
	return nil
}

type AppSecret struct {
	Value   *AppSecretValue `yaml:"value"`
	Path    string          `yaml:"path" validate:"omitempty,filepath"`
	Version string          `yaml:"version"`
}

type Database struct {
	Port     uint16 `yaml:"port"`
	Host     string `yaml:"host" validate:"omitempty,hostname_rfc1123"`
	Database string `yaml:"database" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password" validate:"required"`
}

// URL builds the connection string for pgx.
func (d Database) URL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s",
		d.User, d.Password, d.Host, d.Port, d.Database)
}

type S3 struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type Filestore struct {
	Backend   string `yaml:"backend" validate:"omitempty,oneof=local s3"`
	Volume    string `yaml:"volume"`
	URLPrefix string `yaml:"url_prefix"`
	S3        S3     `yaml:"s3"`
}

type Config struct {
	AppSecret  AppSecret `yaml:"app_secret"`
	Database   Database  `yaml:"database"`
	Filestore  Filestore `yaml:"filestore"`
	HostOrigin string    `yaml:"host_origin" validate:"omitempty,url"`
	Env        string    `yaml:"env" validate:"omitempty,oneof=DEV PROD"`
	Port       uint16    `yaml:"port"`
}

func newAppSecret() (string, error) {
	token := make([]byte, appSecretBytes)
	if _, err := rand.Reader.Read(token); err != nil {
		return "", fmt.Errorf("creating app secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(token), nil
}

// loadAppSecret resolves the app secret, generating and persisting one when
// neither a value nor an existing secret file is present.
func loadAppSecret(config *Config) error {
	if config.AppSecret.Value != nil {
		return nil
	}

	var secret string
	if stat, err := os.Lstat(config.AppSecret.Path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking secret path: %w", err)
		}

		file, err := os.OpenFile(config.AppSecret.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, appSecretFilePerms)
		if err != nil {
			return fmt.Errorf("creating secret file: %w", err)
		}
		defer func() { _ = file.Close() }()

		secret, err = newAppSecret()
		if err != nil {
			return fmt.Errorf("generating new app secret: %w", err)
		}

		if _, err := file.WriteString(secret); err != nil {
			return fmt.Errorf("writing secret file: %w", err)
		}
	} else {
		if stat.IsDir() {
			return fmt.Errorf("expected file, got directory at %q", config.AppSecret.Path)
		}
		data, err := os.ReadFile(config.AppSecret.Path)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		secret = string(data)
	}

	val := AppSecretValue(secret)
	config.AppSecret.Value = &val
	return nil
}

func loadWithDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func applyDefaults(config *Config) {
	if config.Env == "" {
		config.Env = loadWithDefault("ENV", EnvDev)
	}
	if config.HostOrigin == "" {
		config.HostOrigin = loadWithDefault("HOST_ORIGIN", "http://localhost:8080")
	}
	if config.Port == 0 {
		if p, err := strconv.ParseUint(loadWithDefault("PORT", "8080"), 10, 16); err == nil {
			config.Port = uint16(p)
		}
	}

	if v := os.Getenv("APP_SECRET"); v != "" && config.AppSecret.Value == nil {
		val := AppSecretValue(v)
		config.AppSecret.Value = &val
	}
	if config.AppSecret.Path == "" {
		config.AppSecret.Path = loadWithDefault("APP_SECRET_PATH", "/data/secret")
	}
	if config.AppSecret.Version == "" {
		config.AppSecret.Version = loadWithDefault("APP_SECRET_VERSION", "1")
	}

	if config.Database.Host == "" {
		config.Database.Host = loadWithDefault("DATABASE_HOST", "localhost")
	}
	if config.Database.Port == 0 {
		if p, err := strconv.ParseUint(loadWithDefault("DATABASE_PORT", "5432"), 10, 16); err == nil {
			config.Database.Port = uint16(p)
		}
	}
	if config.Database.Database == "" {
		config.Database.Database = os.Getenv("DATABASE")
	}
	if config.Database.User == "" {
		config.Database.User = os.Getenv("DATABASE_USER")
	}
	if config.Database.Password == "" {
		config.Database.Password = os.Getenv("DATABASE_PASSWORD")
	}

	if config.Filestore.Backend == "" {
		config.Filestore.Backend = loadWithDefault("FILESTORE_BACKEND", "local")
	}
	if config.Filestore.Volume == "" {
		config.Filestore.Volume = loadWithDefault("FILESTORE_VOLUME", "/data/files")
	}
	if config.Filestore.URLPrefix == "" {
		config.Filestore.URLPrefix = loadWithDefault("FILESTORE_URL_PREFIX", "/files")
	}
	if config.Filestore.S3.Endpoint == "" {
		config.Filestore.S3.Endpoint = os.Getenv("S3_ENDPOINT")
	}
	if config.Filestore.S3.Bucket == "" {
		config.Filestore.S3.Bucket = loadWithDefault("S3_BUCKET", "recipevault-images")
	}
	if config.Filestore.S3.AccessKey == "" {
		config.Filestore.S3.AccessKey = os.Getenv("S3_ACCESS_KEY")
	}
	if config.Filestore.S3.SecretKey == "" {
		config.Filestore.S3.SecretKey = os.Getenv("S3_SECRET_KEY")
	}
}

// LoadConfig reads the YAML config file when present, overlays environment
// variables for anything unset, resolves the app secret, and validates the
// result.
func LoadConfig() (*Config, error) {
	var config Config

	path := loadWithDefault("RECIPEVAULT_CONFIG", defaultConfigFilePath)
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyDefaults(&config)

	if err := loadAppSecret(&config); err != nil {
		return nil, fmt.Errorf("loading app secret: %w", err)
	}
	if err := config.AppSecret.Value.Validate(); err != nil {
		return nil, fmt.Errorf("validating app secret: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &config, nil
}
