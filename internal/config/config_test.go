package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Metadata: MetadataConfig{BasePath: "/tmp/ebookhub"},
		Server: ServerConfig{
			Name:         "EbookHub Server",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Auth: AuthConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 720 * time.Hour,
			RateLimitPerSecond:   1,
			RateLimitBurst:       5,
		},
		Upload: UploadConfig{
			MaxFileSize:  64 << 20,
			MaxCoverSize: 8 << 20,
		},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "test"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyMetadataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Metadata.BasePath = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroUploadLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Upload.MaxFileSize = 0
	assert.Error(t, cfg.Validate())
}

func TestGetConfigValuePrecedence(t *testing.T) {
	t.Setenv("EBOOKHUB_TEST_KEY", "from-env")

	// Flag wins over env
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "EBOOKHUB_TEST_KEY", "default"))
	// Env wins over default
	assert.Equal(t, "from-env", getConfigValue("", "EBOOKHUB_TEST_KEY", "default"))
	// Default when nothing set
	assert.Equal(t, "default", getConfigValue("", "EBOOKHUB_TEST_KEY_MISSING", "default"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("EBOOKHUB_TEST_INT", "42")
	assert.Equal(t, 42, getIntConfigValue("", "EBOOKHUB_TEST_INT", 7))

	t.Setenv("EBOOKHUB_TEST_INT_BAD", "not a number")
	assert.Equal(t, 7, getIntConfigValue("", "EBOOKHUB_TEST_INT_BAD", 7))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment line\n\nEBOOKHUB_ENVFILE_A=hello\nEBOOKHUB_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Setenv("EBOOKHUB_ENVFILE_A", "") // ensure cleanup
	t.Setenv("EBOOKHUB_ENVFILE_B", "")
	os.Unsetenv("EBOOKHUB_ENVFILE_A")
	os.Unsetenv("EBOOKHUB_ENVFILE_B")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("EBOOKHUB_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("EBOOKHUB_ENVFILE_B"))
}

func TestLoadEnvFileDoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("EBOOKHUB_ENVFILE_C=from-file\n"), 0o600))

	t.Setenv("EBOOKHUB_ENVFILE_C", "from-env")
	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "from-env", os.Getenv("EBOOKHUB_ENVFILE_C"))
}

func TestExpandPath(t *testing.T) {
	expanded, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", expanded)

	expanded, err = expandPath("/absolute/path", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/path", expanded)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	expanded, err = expandPath("~/data", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data"), expanded)
}
