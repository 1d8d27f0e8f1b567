package cli

import (
	"fmt"
	"sort"

	"csslint/internal/core/errors"
	"csslint/internal/core/exclusion"
	"csslint/internal/core/options"
	"csslint/internal/core/prefs"
	"csslint/internal/shared/util"

	"github.com/spf13/cobra"
)

func newPrefsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect and change lint preferences",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print every effective preference",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := openPreferences(opts)
				if err != nil {
					return err
				}
				entries := store.Entries()
				keys := make([]string, 0, len(entries))
				for k := range entries {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				out := cmd.OutOrStdout()
				for _, k := range keys {
					suffix := ""
					if store.IsDefault(k) {
						suffix = faintColor.Sprint(" (default)")
					}
					fmt.Fprintf(out, "%s = %q%s\n", k, entries[k], suffix)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one preference",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openPreferences(opts)
				if err != nil {
					return err
				}
				v, ok := store.Get(args[0])
				if !ok {
					return errors.AddContext(errors.New(errors.CodeNotFound, "preference is not set"), errors.CtxOption, args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Store a preference",
			Long: "Stores a preference in the instance scope. Keys are option ids (see 'csslint options') or " +
				prefs.KeyExcludePathRegexes + ", a newline-delimited list of regular expressions matched against full paths.",
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := validatePreference(args[0], args[1])
				if err != nil {
					return err
				}
				store, err := openPreferences(opts)
				if err != nil {
					return err
				}
				if err := store.Set(key, args[1]); err != nil {
					return errors.AddContext(errors.Wrap(err, errors.CodeIO, "store preference"), errors.CtxOption, key)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "unset <key>",
			Short: "Remove a preference so its default applies",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openPreferences(opts)
				if err != nil {
					return err
				}
				if err := store.Unset(args[0]); err != nil {
					return errors.AddContext(errors.Wrap(err, errors.CodeIO, "remove preference"), errors.CtxOption, args[0])
				}
				return nil
			},
		},
	)
	return cmd
}

// validatePreference returns the canonical key for a preference write. It
// rejects unknown keys, values that do not parse as the option's kind and
// exclusion lists holding an invalid pattern.
func validatePreference(key, value string) (string, error) {
	if key == prefs.KeyExcludePathRegexes {
		patterns := util.SplitList(value)
		if accepted := exclusion.New(patterns).Patterns(); len(accepted) != len(patterns) {
			return "", errors.AddContext(errors.New(errors.CodeValidationError, "exclusion list holds an invalid regular expression"), errors.CtxOption, key)
		}
		return key, nil
	}
	o, ok := options.Lookup(key)
	if !ok {
		return "", errors.AddContext(errors.New(errors.CodeValidationError, "unknown preference key"), errors.CtxOption, key)
	}
	if _, err := options.Parse(o.Kind, value); err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "invalid option value"), errors.CtxOption, key)
	}
	return o.Key, nil
}
