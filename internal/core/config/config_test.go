package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVER_PORT")

	os.Setenv("MONGO_URI", "mongodb://localhost:27017")
	os.Setenv("ESEWA_SECRET_KEY", "test-secret")
	defer func() {
		os.Unsetenv("MONGO_URI")
		os.Unsetenv("ESEWA_SECRET_KEY")
	}()

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	assert.Equal(t, "storefront", cfg.Mongo.Database)
	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, "EPAYTEST", cfg.Esewa.ProductCode)
	assert.Equal(t, "https://rc-epay.esewa.com.np", cfg.Esewa.BaseURL)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	os.Setenv("APP_ENV", "production")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("FRONTEND_URL", "https://shop.example.com")
	os.Setenv("MONGO_URI", "mongodb://db.example.com:27017")
	os.Setenv("MONGO_DATABASE", "shop")
	os.Setenv("ESEWA_SECRET_KEY", "prod-secret")
	os.Setenv("ESEWA_PRODUCT_CODE", "NP-ES-SHOP")
	defer func() {
		os.Unsetenv("APP_ENV")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("FRONTEND_URL")
		os.Unsetenv("MONGO_URI")
		os.Unsetenv("MONGO_DATABASE")
		os.Unsetenv("ESEWA_SECRET_KEY")
		os.Unsetenv("ESEWA_PRODUCT_CODE")
	}()

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "https://shop.example.com", cfg.FrontendURL)
	assert.Equal(t, "mongodb://db.example.com:27017", cfg.Mongo.URI)
	assert.Equal(t, "shop", cfg.Mongo.Database)
	assert.Equal(t, "NP-ES-SHOP", cfg.Esewa.ProductCode)
}

// TestLoad_File verifies that values are loaded from a .env file.
func TestLoad_File(t *testing.T) {
	content := []byte(`
APP_ENV=staging
LOG_LEVEL=warn
SERVER_PORT=7070
MONGO_URI=mongodb://staging:27017
ESEWA_SECRET_KEY=staging-secret
`)
	err := os.WriteFile(".env", content, 0644)
	require.NoError(t, err)
	defer os.Remove(".env")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, "mongodb://staging:27017", cfg.Mongo.URI)
}

// TestLoad_ValidationFailure verifies that missing required fields return an error.
func TestLoad_ValidationFailure(t *testing.T) {
	os.Unsetenv("MONGO_URI")
	os.Unsetenv("ESEWA_SECRET_KEY")

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "missing required configuration")
}
