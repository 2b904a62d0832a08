package config

import (
	"fmt"
	"os"
	"strings"
)

// Config aggregates all service configuration.
type Config struct {
	Server  ServerConfig
	Shopify ShopifyConfig
	Storage StorageConfig
	CORS    CORSConfig
	Log     LogConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	shopify, err := loadShopifyConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Shopify: shopify,
		Storage: StorageConfig{DataDir: getEnvOrDefault("DATA_DIR", "./data")},
		CORS:    CORSConfig{AllowedOrigin: getEnvOrDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5173")},
		Log:     LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "info")},
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3001"
	}

	if strings.Contains(port, ":") {
		// Allow ":3001" or "127.0.0.1:3001" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// ShopifyConfig carries the commerce API credentials. Both the shop URL and
// the access token are required; the backend cannot enrich campaigns without
// them.
type ShopifyConfig struct {
	ShopURL     string
	AccessToken string
	APIVersion  string
}

func loadShopifyConfig() (ShopifyConfig, error) {
	cfg := ShopifyConfig{
		ShopURL:     strings.TrimSpace(os.Getenv("SHOPIFY_SHOP_URL")),
		AccessToken: strings.TrimSpace(os.Getenv("SHOPIFY_ACCESS_TOKEN")),
		APIVersion:  getEnvOrDefault("SHOPIFY_API_VERSION", "2023-10"),
	}
	if cfg.ShopURL == "" || cfg.AccessToken == "" {
		return ShopifyConfig{}, fmt.Errorf("SHOPIFY_SHOP_URL and SHOPIFY_ACCESS_TOKEN must be set")
	}
	return cfg, nil
}

// StorageConfig locates the campaign document directory.
type StorageConfig struct {
	DataDir string
}

// CORSConfig describes the admin frontend origin.
type CORSConfig struct {
	AllowedOrigin string
}

// LogConfig carries the global log level.
type LogConfig struct {
	Level string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
