package cli

import (
	"fmt"
	"io"
	"os"

	"csslint/internal/shared/version"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	verbose    bool

	closeLogs func()
}

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	root, opts := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	if opts.closeLogs != nil {
		opts.closeLogs()
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "csslint",
		Short:         "Incremental CSS lint for workspace projects",
		Long:          "csslint analyzes the style sheets of opted-in projects and records the issues it finds as markers.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			uiMode, _ := cmd.Flags().GetBool("ui")
			opts.closeLogs = configureLogging(cmd.ErrOrStderr(), uiMode, opts.verbose)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: discovered from the working directory)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newBuildCmd(opts),
		newWatchCmd(opts),
		newToggleCmd(opts),
		newMarkersCmd(opts),
		newPrefsCmd(opts),
		newOptionsCmd(opts),
		newVersionCmd(),
	)
	return root, opts
}
