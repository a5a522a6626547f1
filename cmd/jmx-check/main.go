// jmx-check reads MBeans through a Jolokia agent, compares them with warning
// and critical thresholds and reports the result as a monitoring check plugin.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/amiskov/jmx-check/cmd/jmx-check/config"
	"github.com/amiskov/jmx-check/pkg/check"
	"github.com/amiskov/jmx-check/pkg/exporter"
	"github.com/amiskov/jmx-check/pkg/jolokia"
	"github.com/amiskov/jmx-check/pkg/logger"
	"github.com/amiskov/jmx-check/pkg/models"
	"github.com/amiskov/jmx-check/pkg/reporter"
	"github.com/amiskov/jmx-check/pkg/threshold"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the check and returns the process exit code.
// Everything a monitoring system should see goes to stdout.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(stdout, err)
		return models.Critical.ExitCode()
	}

	code := models.OK.ExitCode()
	cmd := &cobra.Command{
		Use:           "jmx-check",
		Short:         "JMX monitoring via Jolokia Java agent",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Validate()
		},
		Run: func(cmd *cobra.Command, args []string) {
			code = execute(cmd.Context(), cfg, stdout).ExitCode()
		},
	}
	cfg.BindFlags(cmd.Flags())

	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stdout, err)
		return models.Critical.ExitCode()
	}
	return code
}

func execute(ctx context.Context, cfg *config.Config, stdout io.Writer) models.Severity {
	lggr, err := logger.Run(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stdout, "failed initializing logger: %s\n", err)
		return models.Critical
	}
	defer func() { _ = lggr.Sync() }()
	ctx = lggr.WithContext(ctx)

	var (
		recorders []check.Recorder
		textfile  *exporter.Textfile
	)
	if cfg.Textfile != "" {
		textfile = exporter.NewTextfile(cfg.Textfile)
		recorders = append(recorders, textfile)
	}

	checker := check.New(
		threshold.NewEvaluator(jolokia.New(cfg.Timeout)),
		reporter.New(stdout, cfg.WarnExplanation, cfg.CritExplanation),
		recorders...,
	)

	severity, err := checker.CheckAll(ctx, cfg.Requests())
	if err != nil {
		logger.Log(ctx).Debugf("%d of the checks failed: %v", len(multierr.Errors(err)), err)
	}

	if textfile != nil {
		if err := textfile.Write(); err != nil {
			logger.Log(ctx).Errorf("textfile export failed: %v", err)
		}
	}

	return severity
}
