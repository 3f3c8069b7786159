package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/net/websocket"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
}

type ServerConfig struct {
	BaseURL string `env:"SERVER_URL"`
	Port    string `env:"SERVER_PORT"`

	// CORSOrigin is sent as Access-Control-Allow-Origin so the browser UI can reach the API
	CORSOrigin string `env:"CORS_ORIGIN" default:"*"`

	logLevel string `env:"LOG_LEVEL" default:"info"`
	Logger   *slog.Logger
}

// ClientConfig will be set by the CLI app
type ClientConfig struct {
	ServerURL string // The reqbench server to talk to
}

type DatabaseConfig struct {
	Path string `env:"DB_PATH"`
}

var allowedLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func LoadConfig() (*Config, error) {
	// We ignore the error as the .env file is optional
	_ = godotenv.Load()

	cfg := &Config{}

	baseURL := getOrDefault("SERVER_URL", "http://localhost")
	port := getOrDefault("SERVER_PORT", "8001")
	corsOrigin := getOrDefault("CORS_ORIGIN", "*")
	logLevel := getOrDefault("LOG_LEVEL", "info")
	level, ok := allowedLogLevels[logLevel]
	if !ok {
		return nil, fmt.Errorf("invalid log level: %s", logLevel)
	}

	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("invalid server port %q: %w", port, err)
	}

	cfg.Server = ServerConfig{
		BaseURL:    baseURL,
		Port:       port,
		CORSOrigin: corsOrigin,
		logLevel:   logLevel,
		Logger:     setupLogger(level),
	}

	cfg.Database = DatabaseConfig{
		Path: getOrDefault("DB_PATH", "reqbench.db"),
	}

	return cfg, nil
}

// Utility methods

// setupLogger creates a new logger for the server application
func setupLogger(l slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     l,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				source := a.Value.Any().(*slog.Source)
				a.Value = slog.StringValue(source.File + ":" + strconv.Itoa(source.Line))
			}
			return a
		},
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// HTTPURL returns the full HTTP URL of the server
func (c *ServerConfig) HTTPURL() string {
	baseURL := strings.TrimSuffix(c.BaseURL, "/")
	if c.Port == "" || strings.Contains(c.BaseURL, "https://") { // Behind a proxy we don't need to specify the port
		return baseURL
	}
	return fmt.Sprintf("%s:%s", baseURL, c.Port)
}

// Addr is the listen address for http.Server
func (c *ServerConfig) Addr() string {
	return ":" + c.Port
}

// APIURL returns the REST endpoint for the given path, e.g. "/api/request"
func (c *ClientConfig) APIURL(path string) string {
	return strings.TrimSuffix(c.ServerURL, "/") + path
}

// WebSocketURL returns the ws:// or wss:// subscription URL for a store ("request" or "response")
func (c *ClientConfig) WebSocketURL(store string) string {
	wsURL := strings.TrimSuffix(c.ServerURL, "/")
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)
	return wsURL + "/ws/" + store
}

// NewWebSocketConfig creates a websocket.Config for CLI usage
func (c *ClientConfig) NewWebSocketConfig(store string) (*websocket.Config, error) {
	// For CLI clients, we can use the server itself as the origin
	return websocket.NewConfig(c.WebSocketURL(store), strings.TrimSuffix(c.ServerURL, "/"))
}

// getOrDefault returns the value of the environment variable with the given key
// or the default value if the variable is not set
func getOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
