package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  port: "6000"
database:
  driver: sqlite
jwt:
  secret: from-file
razorpay:
  key_id: rzp_file
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("file values and defaults", func(t *testing.T) {
		t.Setenv("APP_ENV", "")
		dir := writeConfig(t, testYAML)

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "6000", cfg.Server.Port)
		assert.Equal(t, "from-file", cfg.JWT.Secret)
		assert.Equal(t, int64(168), cfg.JWT.Expire)
		assert.Equal(t, "INR", cfg.Razorpay.Currency)
		assert.False(t, cfg.Razorpay.Enabled())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("APP_ENV", "")
		t.Setenv("JWT_SECRET", "from-env")
		t.Setenv("RAZORPAY_KEY_SECRET", "shh")
		t.Setenv("PORT", "7000")
		t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
		dir := writeConfig(t, testYAML)

		cfg, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.JWT.Secret)
		assert.True(t, cfg.Razorpay.Enabled())
		assert.Equal(t, "7000", cfg.Server.Port)
		assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("missing secret fails validation", func(t *testing.T) {
		t.Setenv("APP_ENV", "")
		dir := writeConfig(t, "database:\n  driver: sqlite\n")

		_, err := Load(dir)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			JWT:      JWTConfig{Secret: "secret"},
			Database: DatabaseConfig{Driver: "postgres", URL: "postgres://localhost/coursehub"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Database.URL = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.App.Env = "prod"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Upload.Provider = "ftp"
	assert.Error(t, cfg.Validate())
}
