package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	os.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	os.Setenv("PYQVAULT_ADMIN_PASSWORD", "secret")
	defer os.Unsetenv("CONFIG_PATH")
	defer os.Unsetenv("PYQVAULT_ADMIN_PASSWORD")

	config := LoadConfig()
	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, "./uploads", config.Storage.UploadsPath)
	assert.Equal(t, "./data/papers.json", config.Storage.DataFile)
	assert.Equal(t, "secret", config.Admin.Password)
	assert.Equal(t, int64(50), config.Uploads.MaxSizeMB)
	assert.True(t, config.Audit.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
storage:
  uploads_path: "/data/uploads"
  data_file: "/data/papers.json"
admin:
  password: "from-file"
uploads:
  max_size_mb: 10
  allowed_extensions: [pdf]
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	os.Setenv("CONFIG_PATH", configFile)
	defer os.Unsetenv("CONFIG_PATH")

	config := LoadConfig()
	assert.Equal(t, "9090", config.Server.Port)
	assert.Equal(t, "/data/uploads", config.Storage.UploadsPath)
	assert.Equal(t, "from-file", config.Admin.Password)
	assert.Equal(t, int64(10), config.Uploads.MaxSizeMB)
	assert.Equal(t, []string{"pdf"}, config.Uploads.AllowedExtensions)
}

func TestLoadConfigEnvOverridesPassword(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("admin:\n  password: \"from-file\"\n"), 0644))
	os.Setenv("CONFIG_PATH", configFile)
	os.Setenv("PYQVAULT_ADMIN_PASSWORD", "from-env")
	defer os.Unsetenv("CONFIG_PATH")
	defer os.Unsetenv("PYQVAULT_ADMIN_PASSWORD")

	config := LoadConfig()
	assert.Equal(t, "from-env", config.Admin.Password)
}
