package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"csslint/internal/core/builder"
	"csslint/internal/core/changeset"
	"csslint/internal/core/options"
	"csslint/internal/data/markers"
	"csslint/internal/shared/version"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	pathColor    = color.New(color.FgCyan)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgBlue)
	faintColor   = color.New(color.Faint)
	okColor      = color.New(color.FgGreen, color.Bold)
)

func newBuildCmd(opts *rootOptions) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "build [project...]",
		Short: "Lint participating projects once",
		Long: "Runs one build per named project, or every participating project when none is named. " +
			"Builds are incremental against the last successful build unless --full is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			kind := changeset.Incremental
			if full {
				kind = changeset.Full
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				reports, err := rt.app.BuildAll(cmd.Context(), kind)
				for _, r := range reports {
					printReport(out, r)
				}
				if len(reports) == 0 && err == nil {
					fmt.Fprintln(out, "no projects have lint enabled; see 'csslint toggle'")
				}
				return err
			}

			var errs []error
			for _, name := range args {
				r, err := rt.app.Build(cmd.Context(), name, kind)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				printReport(out, r)
			}
			return stderrors.Join(errs...)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Lint every file instead of only the changed ones")
	return cmd
}

func printReport(w io.Writer, r builder.Report) {
	fmt.Fprintf(w, "%s: %s build, %d analyzed, %d excluded, %d failed, %d markers (%s)\n",
		pathColor.Sprint(r.Project),
		r.Kind,
		r.Analyzed,
		r.Excluded,
		r.Failed,
		r.MarkersWritten,
		r.Duration.Round(time.Millisecond),
	)
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <project>",
		Short: "Enable or disable lint for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			enabled, err := rt.app.Toggle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if enabled {
				fmt.Fprintf(cmd.OutOrStdout(), "lint %s for %s\n", okColor.Sprint("enabled"), args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "lint %s for %s; its markers were removed\n", faintColor.Sprint("disabled"), args[0])
			}
			return nil
		},
	}
}

func newMarkersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "markers [project]",
		Short: "List recorded lint markers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			found, err := rt.app.Markers(cmd.Context(), name)
			if err != nil {
				return err
			}
			printMarkers(cmd.OutOrStdout(), found)
			return nil
		},
	}
}

func printMarkers(w io.Writer, found []markers.Marker) {
	if len(found) == 0 {
		fmt.Fprintln(w, okColor.Sprint("no problems recorded"))
		return
	}
	sorted := append([]markers.Marker(nil), found...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Project != b.Project {
			return a.Project < b.Project
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	warnings, errs := 0, 0
	for _, m := range sorted {
		fmt.Fprintf(w, "%s:%d:%d: %s %s %s\n",
			pathColor.Sprint(m.Project+"/"+m.Path),
			m.Line,
			m.Column,
			severityLabel(m.Severity),
			m.Message,
			faintColor.Sprintf("[%s]", m.Category),
		)
		switch m.Severity {
		case markers.SeverityError:
			errs++
		case markers.SeverityWarning:
			warnings++
		}
	}
	fmt.Fprintf(w, "\n%d problems (%d errors, %d warnings)\n", len(sorted), errs, warnings)
}

func severityLabel(s markers.Severity) string {
	switch s {
	case markers.SeverityError:
		return errorColor.Sprint("error")
	case markers.SeverityWarning:
		return warningColor.Sprint("warning")
	default:
		return infoColor.Sprint(string(s))
	}
}

func newOptionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the analysis options and whether each is on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openPreferences(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var group options.Group
			for _, o := range options.All() {
				if o.Group != group {
					group = o.Group
					fmt.Fprintf(out, "%s\n", strings.ToUpper(string(group)))
				}
				state := faintColor.Sprint("off")
				if raw, ok := store.Get(o.Key); ok {
					if v, err := options.Parse(o.Kind, raw); err == nil && (v.Kind != options.Boolean || v.Bool) {
						state = okColor.Sprint("on ")
					}
				}
				fmt.Fprintf(out, "  %s %-30s %s\n", state, o.Key, o.Description)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "csslint v%s\n", version.Version)
			if version.GitCommit != "" {
				fmt.Fprintf(out, "commit: %s\n", version.GitCommit)
			}
			if version.BuildDate != "" {
				fmt.Fprintf(out, "built:  %s\n", version.BuildDate)
			}
		},
	}
}
