package main

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the application configuration, read from config.yaml (or
// CONFIG_PATH) with environment overrides for secrets.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		UploadsPath string `yaml:"uploads_path"`
		DataFile    string `yaml:"data_file"`
	} `yaml:"storage"`
	Admin struct {
		Password       string `yaml:"password"`
		SessionTTLMins int    `yaml:"session_ttl_minutes"`
	} `yaml:"admin"`
	Uploads struct {
		MaxSizeMB         int64    `yaml:"max_size_mb"`
		AllowedExtensions []string `yaml:"allowed_extensions"`
	} `yaml:"uploads"`
	Audit struct {
		Enabled  bool   `yaml:"enabled"`
		Schedule string `yaml:"schedule"`
	} `yaml:"audit"`
	Web struct {
		TemplatePath string `yaml:"template_path"`
	} `yaml:"web"`
}

// LoadConfig reads the config file, falling back to defaults when it is
// missing or malformed. The admin password can always be overridden via
// PYQVAULT_ADMIN_PASSWORD.
func LoadConfig() *Config {
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	config := defaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		log.Printf("Failed to read config file, using defaults: %v", err)
	} else if err := yaml.Unmarshal(data, config); err != nil {
		log.Printf("Failed to parse config file, using defaults: %v", err)
		config = defaultConfig()
	}

	if password := os.Getenv("PYQVAULT_ADMIN_PASSWORD"); password != "" {
		config.Admin.Password = password
	}
	if config.Admin.Password == "" {
		log.Fatal("Admin password must be set via PYQVAULT_ADMIN_PASSWORD or the config file")
	}

	return config
}

func defaultConfig() *Config {
	config := &Config{}
	config.Server.Host = "0.0.0.0"
	config.Server.Port = "8080"
	config.Storage.UploadsPath = "./uploads"
	config.Storage.DataFile = "./data/papers.json"
	config.Admin.SessionTTLMins = 12 * 60
	config.Uploads.MaxSizeMB = 50
	config.Audit.Enabled = true
	config.Audit.Schedule = "0 3 * * *" // nightly
	config.Web.TemplatePath = "./web/templates"
	return config
}
