// Command uniguard runs one system health audit cycle.
//
//	uniguard [CYCLE_ID]
//
// CYCLE_ID labels the cycle in the audit log and defaults to MANUAL. It is
// taken verbatim: the command has no flags or subcommands, so IDs such as
// "help" or "--nightly" are ordinary cycle IDs.
//
// Configuration comes from the file named by UNIGUARD_CONFIG, if any, and the
// UNIGUARD_LOG_PATH, UNIGUARD_LOG_LEVEL and UNIGUARD_PROBE_ADDRESS
// environment variables. The command exits 0 once a cycle has run, whatever
// its outcome; the outcome is in the audit log.
//
// The supervisor starts each worker by re-executing this binary with
// UNIGUARD_RUN_ID set; that variable switches the binary into worker mode.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/uniguard"
	"github.com/zero-day-ai/uniguard/config"
	"github.com/zero-day-ai/uniguard/worker"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	code := 0
	cmd := newRootCmd(&code)
	if os.Getenv(worker.RunIDEnv) != "" {
		cmd = newWorkerCmd(&code)
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return code
}

// newCommand returns a command that passes its arguments through untouched.
func newCommand(use, short string, run func(cmd *cobra.Command, id string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:                use,
		Short:              short,
		Args:               cobra.MaximumNArgs(1),
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := config.DefaultCycleID
			if len(args) == 1 && args[0] != "" {
				id = args[0]
			}
			return run(cmd, id)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	return cmd
}

func newRootCmd(code *int) *cobra.Command {
	return newCommand("uniguard [CYCLE_ID]", "Run a system health audit cycle",
		func(cmd *cobra.Command, id string) error {
			auditor, err := newAuditor(cmd)
			if err != nil {
				return err
			}
			if _, err := auditor.RunCycle(cmd.Context(), id); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "uniguard:", err)
			}
			*code = 0
			return nil
		})
}

func newWorkerCmd(code *int) *cobra.Command {
	return newCommand("uniguard CYCLE_ID", "Run the check battery for a supervisor",
		func(cmd *cobra.Command, id string) error {
			auditor, err := newAuditor(cmd)
			if err != nil {
				return err
			}
			*code = auditor.RunWorker(cmd.Context(), id)
			return nil
		})
}

func newAuditor(cmd *cobra.Command) (*uniguard.Auditor, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	return uniguard.New(cfg,
		uniguard.WithConsole(cmd.OutOrStdout()),
		uniguard.WithLogger(uniguard.NewDiagnosticsLogger(cfg.Diagnostics, cmd.ErrOrStderr())))
}
