package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vvka-141/pgetl/internal/db"
	"github.com/vvka-141/pgetl/internal/db/manager"
	"github.com/vvka-141/pgetl/internal/provision"
	"github.com/vvka-141/pgetl/internal/tui"
	"github.com/vvka-141/pgetl/internal/ui"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

var provisionCmd = &cobra.Command{
	Use:   "provision [source_root]",
	Short: "Create the target database and its tables",
	Long: `Provision creates the target database if it does not exist, then creates
the artists, songs, users, time and songplays tables.

Running it again is safe: existing tables and rows are left alone.

With --reset the tables are dropped first. This asks you to type the database
name unless --force is given, in which case a short countdown runs instead.

The optional source_root is only used to find pgetl.yaml.

Examples:
  pgetl provision -d sparkifydb
  pgetl provision -d sparkifydb --reset
  pgetl provision -d sparkifydb --reset --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProvision,
}

type provisionFlagValues struct {
	conn  connectionFlags
	reset bool
	force bool
}

var provisionFlags provisionFlagValues

func init() {
	rootCmd.AddCommand(provisionCmd)

	addConnectionFlags(provisionCmd, &provisionFlags.conn)

	provisionCmd.Flags().BoolVar(&provisionFlags.reset, "reset", false,
		"Drop the tables before creating them\n"+
			"Requires interactive confirmation unless --force is used")
	provisionCmd.Flags().BoolVar(&provisionFlags.force, "force", false,
		"Skip interactive approval prompt for --reset\n"+
			"Use with --reset for CI/CD pipelines")
}

// buildProvisionConfig builds a ProvisionConfig from CLI flags, environment and pgetl.yaml.
func buildProvisionConfig(cmd *cobra.Command, sourcePath string, verbose bool) (pgetl.ProvisionConfig, error) {
	projectCfg, err := loadProjectConfig(sourcePath)
	if err != nil {
		return pgetl.ProvisionConfig{}, err
	}

	resolved, err := resolveConnectionFromFlags(provisionFlags.conn, projectCfg, verbose)
	if err != nil {
		return pgetl.ProvisionConfig{}, err
	}

	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, provisionFlags.conn.timeout)
	if err != nil {
		return pgetl.ProvisionConfig{}, err
	}

	cfg := pgetl.ProvisionConfig{
		Connection:          *resolved.ConnConfig,
		MaintenanceDatabase: resolved.MaintenanceDB,
		Reset:               provisionFlags.reset,
		Force:               provisionFlags.force,
		Timeout:             timeout,
		Verbose:             verbose,
	}
	if err := cfg.Validate(); err != nil {
		return pgetl.ProvisionConfig{}, err
	}
	return cfg, nil
}

// selectApprover returns the countdown approver for --force and the typed
// confirmation otherwise. A reset without a terminal must be forced.
func selectApprover(reset, force, interactive, verbose bool) (pgetl.Approver, error) {
	if force {
		return ui.NewForcedApprover(verbose), nil
	}
	if reset && !interactive {
		return nil, fmt.Errorf("--reset needs a terminal for confirmation; add --force in non-interactive runs: %w", pgetl.ErrInvalidConfig)
	}
	return ui.NewInteractiveApprover(verbose), nil
}

func runProvision(cmd *cobra.Command, args []string) error {
	sourcePath := ""
	if len(args) == 1 {
		sourcePath = args[0]
	}
	verbose := getVerboseFlag(cmd)

	cfg, err := buildProvisionConfig(cmd, sourcePath, verbose)
	if err != nil {
		return err
	}

	approver, err := selectApprover(cfg.Reset, cfg.Force, tui.IsInteractive(), verbose)
	if err != nil {
		return err
	}

	logFormat, _ := cmd.Flags().GetString("log-format")
	logger, flush, err := newLogger(logFormat, verbose)
	if err != nil {
		return err
	}
	defer flush()

	service := provision.NewService(
		db.NewConnectorFactory(logger),
		approver,
		manager.New(),
		provision.NewSchema(logger),
		logger,
	)

	ctx, cancel := runContext(cfg.Timeout, "provisioning")
	defer cancel()

	if err := service.Provision(ctx, cfg); err != nil {
		return fmt.Errorf("provisioning failed: %w", err)
	}
	return nil
}
