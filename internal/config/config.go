// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	Storage StorageConfig
	Auth    AuthConfig
	Blob    BlobConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// StorageConfig holds local data storage configuration.
type StorageConfig struct {
	// DataPath is the base directory for the database and search index.
	DataPath string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes).
	// Set by auth.LoadOrGenerateKey in main.
	AccessTokenKey       []byte
	AccessTokenDuration  time.Duration // e.g. 15m
	RefreshTokenDuration time.Duration // e.g. 720h (30 days)
}

// BlobConfig holds product image storage configuration.
type BlobConfig struct {
	// Driver selects the blob backend: fs, memory, or s3.
	Driver string
	// Root is the local directory for the fs driver
	// (default: {data}/images).
	Root string
	// S3 settings, used only when Driver is s3.
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for data storage")
	serverName := flag.String("server-name", "", "Name for the server")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	accessTokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := flag.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")

	blobDriver := flag.String("blob-driver", "", "Blob storage driver (fs, memory, s3)")
	blobRoot := flag.String("blob-root", "", "Local directory for fs blob storage")
	blobBucket := flag.String("blob-bucket", "", "S3 bucket for product images")
	blobRegion := flag.String("blob-region", "", "S3 region")
	blobEndpoint := flag.String("blob-endpoint", "", "S3 endpoint override (for MinIO etc.)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "Mughouse Server"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Blob: BlobConfig{
			Driver:          getConfigValue(*blobDriver, "BLOB_DRIVER", "fs"),
			Root:            getConfigValue(*blobRoot, "BLOB_ROOT", ""),
			Bucket:          getConfigValue(*blobBucket, "BLOB_BUCKET", ""),
			Region:          getConfigValue(*blobRegion, "BLOB_REGION", "ap-southeast-1"),
			Endpoint:        getConfigValue(*blobEndpoint, "BLOB_ENDPOINT", ""),
			AccessKeyID:     getConfigValue("", "BLOB_ACCESS_KEY_ID", ""),
			SecretAccessKey: getConfigValue("", "BLOB_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getBoolConfigValue("", "BLOB_USE_PATH_STYLE", false),
		},
	}

	// Parse auth durations.
	accessDurationStr := getConfigValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m")
	accessDuration, err := time.ParseDuration(accessDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid access token duration %q: %w", accessDurationStr, err)
	}
	cfg.Auth.AccessTokenDuration = accessDuration

	refreshDurationStr := getConfigValue(*refreshTokenDuration, "REFRESH_TOKEN_DURATION", "720h")
	refreshDuration, err := time.ParseDuration(refreshDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token duration %q: %w", refreshDurationStr, err)
	}
	cfg.Auth.RefreshTokenDuration = refreshDuration

	// Parse server timeouts.
	cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.expandBlobRoot(); err != nil {
		return nil, fmt.Errorf("invalid blob root: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	switch c.Blob.Driver {
	case "fs", "memory":
	case "s3":
		if c.Blob.Bucket == "" {
			return errors.New("BLOB_BUCKET is required for the s3 blob driver")
		}
	default:
		return fmt.Errorf("invalid blob driver: %s (must be fs, memory, or s3)", c.Blob.Driver)
	}

	return nil
}

// DatabasePath returns the SQLite database location under the data path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataPath, "mughouse.db")
}

// SearchIndexPath returns the bleve index location under the data path.
func (c *Config) SearchIndexPath() string {
	return filepath.Join(c.Storage.DataPath, "search.bleve")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Mughouse", "data")

	expanded, err := expandPath(c.Storage.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// expandBlobRoot defaults the fs driver root to {data}/images.
func (c *Config) expandBlobRoot() error {
	defaultPath := filepath.Join(c.Storage.DataPath, "images")

	expanded, err := expandPath(c.Blob.Root, defaultPath)
	if err != nil {
		return err
	}
	c.Blob.Root = expanded
	return nil
}

func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	str := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), str, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Real env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
