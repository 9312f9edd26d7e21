package db

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vvka-141/pgetl/internal/config"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

// GranularConnFlags are the libpq-style CLI flags (-h, -p, -U, -d).
//
// Password is deliberately absent; use $PGPASSWORD or a connection string.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server-selecting flag was given. Database is
// excluded because -d may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags select and configure cloud IAM authentication.
// The Azure client secret is only read from $AZURE_CLIENT_SECRET.
type CloudFlags struct {
	Azure         bool
	AzureTenantID string
	AzureClientID string

	AWS       bool
	AWSRegion string

	Google         bool
	GoogleInstance string
}

// EnvVars are the libpq, pgetl and cloud SDK environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST                  string
	PGPORT                  string
	PGUSER                  string
	PGPASSWORD              string
	PGDATABASE              string
	PGSSLMODE               string
	DATABASE_URL            string
	PGETL_CONNECTION_STRING string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
	AWS_REGION          string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:                  os.Getenv("PGHOST"),
		PGPORT:                  os.Getenv("PGPORT"),
		PGUSER:                  os.Getenv("PGUSER"),
		PGPASSWORD:              os.Getenv("PGPASSWORD"),
		PGDATABASE:              os.Getenv("PGDATABASE"),
		PGSSLMODE:               os.Getenv("PGSSLMODE"),
		DATABASE_URL:            os.Getenv("DATABASE_URL"),
		PGETL_CONNECTION_STRING: os.Getenv("PGETL_CONNECTION_STRING"),
		AZURE_TENANT_ID:         os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:         os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:     os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:              os.Getenv("AWS_REGION"),
	}
}

// connectionStringFromEnv prefers PGETL_CONNECTION_STRING over DATABASE_URL.
func (e *EnvVars) connectionStringFromEnv() string {
	if e.PGETL_CONNECTION_STRING != "" {
		return e.PGETL_CONNECTION_STRING
	}
	return e.DATABASE_URL
}

// ResolveConnectionParams resolves connection parameters with precedence
// flag > environment > pgetl.yaml > default:
//
//  1. --connection
//  2. $PGETL_CONNECTION_STRING or $DATABASE_URL, when no granular flag is set
//  3. granular flags, then PG* variables, then pgetl.yaml, then defaults
//
// Cloud authentication is applied last. It returns the resolved config and the
// maintenance database used for CREATE DATABASE.
//
// Giving both --connection and granular flags is an error.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*pgetl.ConnectionConfig, string, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, "", fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/postgres\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d sparkifydb: %w", pgetl.ErrInvalidConfig,
		)
	}

	var cfg *pgetl.ConnectionConfig
	var maintenanceDB string
	var err error

	envConnStr := envVars.connectionStringFromEnv()
	switch {
	case connStringFlag != "":
		cfg, maintenanceDB, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envConnStr != "":
		cfg, maintenanceDB, err = resolveFromConnectionString(envConnStr, envVars)
	default:
		cfg, maintenanceDB, err = resolveFromGranularParams(granularFlags, envVars, projectConfig)
	}
	if err != nil {
		return nil, "", err
	}

	if err := applyCloudAuth(cfg, cloudFlags, envVars, projectConfig); err != nil {
		return nil, "", err
	}

	return cfg, maintenanceDB, nil
}

// ParseAuthMethod maps the pgetl.yaml auth_method value to an AuthMethod.
func ParseAuthMethod(s string) (pgetl.AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return pgetl.AuthMethodStandard, nil
	case "aws", "aws-iam":
		return pgetl.AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp":
		return pgetl.AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return pgetl.AuthMethodAzureEntraID, nil
	default:
		return pgetl.AuthMethodStandard, fmt.Errorf("unknown auth_method %q: %w", s, pgetl.ErrInvalidConfig)
	}
}

// applyCloudAuth picks at most one cloud method. Flags win over pgetl.yaml;
// Azure is also enabled by AZURE_TENANT_ID/AZURE_CLIENT_ID.
func applyCloudAuth(cfg *pgetl.ConnectionConfig, flags *CloudFlags, env *EnvVars, projectConfig *config.ProjectConfig) error {
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	enabled := 0
	for _, on := range []bool{flags.Azure, flags.AWS, flags.Google} {
		if on {
			enabled++
		}
	}
	if enabled > 1 {
		return fmt.Errorf("--azure, --aws and --google are mutually exclusive: %w", pgetl.ErrInvalidConfig)
	}

	method, err := ParseAuthMethod(pc.AuthMethod)
	if err != nil {
		return err
	}
	switch {
	case flags.Azure:
		method = pgetl.AuthMethodAzureEntraID
	case flags.AWS:
		method = pgetl.AuthMethodAWSIAM
	case flags.Google:
		method = pgetl.AuthMethodGoogleIAM
	case method == pgetl.AuthMethodStandard && (flags.AzureTenantID != "" || flags.AzureClientID != "" || env.HasAzureCredentials()):
		method = pgetl.AuthMethodAzureEntraID
	}
	cfg.AuthMethod = method

	switch method {
	case pgetl.AuthMethodAzureEntraID:
		cfg.AzureTenantID = firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case pgetl.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	case pgetl.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	}
	return nil
}

// HasAzureCredentials returns true if Azure Entra ID environment variables are set.
func (e *EnvVars) HasAzureCredentials() bool {
	return e.AZURE_TENANT_ID != "" || e.AZURE_CLIENT_ID != ""
}

// resolveFromConnectionString parses connStr. Its database doubles as the
// maintenance database; the target database comes from -d.
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*pgetl.ConnectionConfig, string, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, "", fmt.Errorf("invalid connection string: %w: %w", err, pgetl.ErrInvalidConfig)
	}

	if cfg.SSLMode == "" {
		cfg.SSLMode = firstNonEmpty(envVars.PGSSLMODE, "prefer")
	}
	if cfg.Password == "" {
		cfg.Password = envVars.PGPASSWORD
	}

	maintenanceDB := firstNonEmpty(cfg.Database, pgetl.DefaultManagementDB)
	return cfg, maintenanceDB, nil
}

// resolveFromGranularParams resolves each field as flag > environment > pgetl.yaml > default.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*pgetl.ConnectionConfig, string, error) {
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	cfg := &pgetl.ConnectionConfig{
		Host:             firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, "localhost"),
		Username:         firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME")),
		Password:         envVars.PGPASSWORD,
		Database:         firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database),
		SSLMode:          firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, "prefer"),
		AuthMethod:       pgetl.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, "", fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", envVars.PGPORT, pgetl.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = 5432
	}

	maintenanceDB := firstNonEmpty(pc.ManagementDatabase, pgetl.DefaultManagementDB)
	return cfg, maintenanceDB, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
