package pgetl

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Pass names accepted by LoadConfig.Only.
const (
	PassCatalog = "catalog"
	PassEvents  = "events"
)

// LoadConfig contains all parameters needed for a load run.
type LoadConfig struct {
	// SourcePath is the root directory holding the catalog and events subdirectories
	SourcePath string

	// CatalogDir and EventsDir are relative to SourcePath
	CatalogDir string
	EventsDir  string

	// Only restricts the run to one pass ("catalog" or "events"); empty runs both
	Only string

	// Extension is the file suffix the walker matches
	Extension string

	// Connection is the resolved target database connection
	Connection ConnectionConfig

	// Timeout is the catastrophic-failure guard for the whole run
	Timeout time.Duration

	// MetricsFile, when set, receives the run counters in Prometheus text format
	MetricsFile string

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}

	if c.Connection.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
	}

	switch c.Only {
	case "", PassCatalog, PassEvents:
	default:
		errs = append(errs, fmt.Errorf("--only must be %q or %q, got %q: %w", PassCatalog, PassEvents, c.Only, ErrInvalidConfig))
	}

	if c.Extension != "" && !strings.HasPrefix(c.Extension, ".") {
		errs = append(errs, fmt.Errorf("extension %q must start with a dot: %w", c.Extension, ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	if !c.Connection.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.Connection.AuthMethod, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// RunsPass reports whether the named pass is enabled by Only.
func (c *LoadConfig) RunsPass(pass string) bool {
	return c.Only == "" || c.Only == pass
}

// ProvisionConfig contains the parameters for creating the target schema.
type ProvisionConfig struct {
	// Connection points at the target database
	Connection ConnectionConfig

	// MaintenanceDatabase is used for CREATE DATABASE. Typically "postgres".
	MaintenanceDatabase string

	// Reset drops the five tables before recreating them
	Reset bool

	// Force replaces the interactive confirmation with a countdown
	Force bool

	Timeout time.Duration
	Verbose bool
}

// Validate checks if the ProvisionConfig has all required fields and valid values.
func (c *ProvisionConfig) Validate() error {
	var errs []error

	if c.Connection.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
	}

	if c.Force && !c.Reset {
		errs = append(errs, fmt.Errorf("force flag requires reset to be enabled: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AuthMethodAWSIAM
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance)
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}
