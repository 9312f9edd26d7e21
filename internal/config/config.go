// Package config reads the optional pgetl.yaml file from a source root.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Username           string `yaml:"username"`
	Database           string `yaml:"database"`
	ManagementDatabase string `yaml:"management_database,omitempty"`
	SSLMode            string `yaml:"sslmode"`
	AuthMethod         string `yaml:"auth_method,omitempty"`
	AzureTenantID      string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID      string `yaml:"azure_client_id,omitempty"`
	AWSRegion          string `yaml:"aws_region,omitempty"`
	GoogleInstance     string `yaml:"google_instance,omitempty"`
}

// SourceConfig names the input subdirectories and the file filter.
type SourceConfig struct {
	CatalogDir string `yaml:"catalog_dir,omitempty"`
	EventsDir  string `yaml:"events_dir,omitempty"`
	Extension  string `yaml:"extension,omitempty"`
}

type ProjectConfig struct {
	Connection  ConnectionConfig `yaml:"connection"`
	Source      SourceConfig     `yaml:"source"`
	Timeout     string           `yaml:"timeout"`
	MetricsFile string           `yaml:"metrics_file,omitempty"`
	LogFormat   string           `yaml:"log_format,omitempty"`
}

const ConfigFileName = "pgetl.yaml"

// Load reads <sourcePath>/pgetl.yaml. A missing file returns ErrConfigNotFound.
func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}
	return &cfg, nil
}

// TimeoutDuration parses Timeout. An empty value returns zero.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c == nil || c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q in %s: %w", c.Timeout, ConfigFileName, err)
	}
	return d, nil
}
