package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variable names for Spotify credentials.
//
// These match the keys the original app expects in a .env file.
const (
	EnvClientID     = "CLIENT_ID"
	EnvClientSecret = "CLIENT_SECRET"
	EnvRedirectURI  = "REDIRECT_URI"
)

// Config represents the application configuration.
//
// Credentials are sourced from the process environment (optionally populated
// from a .env file) with a config.toml file as fallback for values the
// environment does not provide.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// Map converts the Spotify credentials to the map form used by service constructors.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// DatabaseConfig contains token cache database settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// ResolvePath returns the configured database path, or the default location
// under the user's home directory when unset.
func (d DatabaseConfig) ResolvePath() string {
	if d.Path != "" {
		return d.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "cleaner.db"
	}
	return filepath.Join(home, ".spotify-cleaner", "cleaner.db")
}

// ServerConfig contains OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address for the OAuth callback server.
func (s ServerConfig) Addr() string {
	host := s.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := s.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// LoadConfig builds the configuration from the environment and an optional
// TOML file at path.
//
// A .env file in the working directory is loaded first (if present), then
// CLIENT_ID, CLIENT_SECRET and REDIRECT_URI are read from the environment.
// Values absent from the environment fall back to the TOML file.
func LoadConfig(path string) (*Config, error) {
	// Missing .env is fine; the variables may be exported directly.
	_ = godotenv.Load()

	config := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if v := os.Getenv(EnvClientID); v != "" {
		config.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		config.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv(EnvRedirectURI); v != "" {
		config.Credentials.Spotify.RedirectURI = v
	}

	return config, nil
}

// Validate checks that all required credentials are present.
//
// The returned error carries remediation text suitable for direct display.
func (c *Config) Validate() error {
	var missing []string
	if c.Credentials.Spotify.ClientID == "" {
		missing = append(missing, EnvClientID)
	}
	if c.Credentials.Spotify.ClientSecret == "" {
		missing = append(missing, EnvClientSecret)
	}
	if c.Credentials.Spotify.RedirectURI == "" {
		missing = append(missing, EnvRedirectURI)
	}
	if len(missing) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s not set.\n"+
		"Create a .env file in the project root (or export the variables):\n\n"+
		"  CLIENT_ID='your_client_id'\n"+
		"  CLIENT_SECRET='your_client_secret'\n"+
		"  REDIRECT_URI='your_redirect_uri'\n\n"+
		"Credentials come from your app at https://developer.spotify.com/dashboard",
		ErrMissingCredentials, strings.Join(missing, ", "))
}

// DefaultConfig returns a Config with defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
