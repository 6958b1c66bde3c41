// Command attrition serves and reports employee attrition metrics.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	service "github.com/okian/attrition/internal/app"
	"github.com/okian/attrition/internal/config"
	"github.com/okian/attrition/internal/domain/analytics"
	"github.com/okian/attrition/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// cli carries state shared by all subcommands.
type cli struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "attrition",
		Short:        "attrition - employee attrition metrics",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", os.Getenv(config.EnvConfigPath),
		"path to a YAML config file")

	root.AddCommand(
		newServeCmd(c),
		newReportCmd(c),
		newEmployeesCmd(c),
	)
	return root
}

// setup loads configuration and initializes logging. Logs go to stderr so
// stdout stays machine readable.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(cmd.Context(), c.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	c.cfg = cfg
	return nil
}

// newService builds a service from the loaded configuration.
func (c *cli) newService() *service.Service {
	cfg := c.cfg
	engine := analytics.NewEngine(
		analytics.WithOutcome(cfg.Outcome()),
		analytics.WithIncomeField(cfg.IncomeField),
		analytics.WithOverallDimension(cfg.OverallDimension),
		analytics.WithGroupDimensions(cfg.GroupDimensions),
		analytics.WithCorrelationFeatures(cfg.CorrelationFeatures),
	)
	return service.New(
		service.WithLogger(logger.Get()),
		service.WithEngine(engine),
		service.WithDatabasePath(cfg.DatabasePath),
		service.WithFilterDimension(cfg.FilterDimension),
		service.WithEmployeeListLimit(cfg.EmployeeListLimit),
		service.WithIdempotencySize(cfg.IdempotencyCacheSize),
	)
}

// withService starts a service for the duration of fn.
func (c *cli) withService(ctx context.Context, fn func(*service.Service) error) error {
	svc := c.newService()
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()
	return fn(svc)
}
