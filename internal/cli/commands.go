package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amirbrooks/duke/internal/config"
	"github.com/amirbrooks/duke/internal/store"
)

func newInitCmd(gf *GlobalFlags, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the store root and a default config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := store.ExpandHome(gf.Root)
			ws := store.Open(root, "", nil)
			if err := ws.Init(); err != nil {
				return internalErr(err)
			}
			path := configPath(gf)
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				if err := config.Default().Write(path); err != nil {
					return internalErr(err)
				}
			}
			if !gf.Quiet {
				fmt.Fprintln(stdout, "Initialized duke store at:", root)
			}
			return nil
		},
	}
}

func newExecCmd(gf *GlobalFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command line...>",
		Short: "Run a single command line against the stored list",
		Example: `  duke exec deadline report /by 2024-05-01
  duke exec mark 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(gf, stderr)
			if err != nil {
				return err
			}
			defer a.close()
			if _, err := a.handle(strings.Join(args, " "), stdout); err != nil {
				var ee *exitError
				if errors.As(err, &ee) {
					return err
				}
				return &exitError{code: ExitUsage, err: err, silent: true}
			}
			if a.dirty {
				return a.save()
			}
			return nil
		},
	}
}

func newExportCmd(gf *GlobalFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		format   string
		dir      string
		toStdout bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the task list as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(gf, stderr)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := store.NormalizeFormat(format)
			if err != nil {
				return usageErr(err)
			}
			if toStdout {
				b, err := store.Encode(a.list, f)
				if err != nil {
					return internalErr(err)
				}
				_, err = stdout.Write(b)
				return err
			}
			if err := a.ws.Init(); err != nil {
				return internalErr(err)
			}
			path, err := a.ws.Export(a.list, f, dir)
			if err != nil {
				if errors.Is(err, store.ErrInvalid) {
					return usageErr(err)
				}
				return internalErr(err)
			}
			if !gf.Quiet {
				fmt.Fprintf(stdout, "Wrote %s to: %s\n", strings.ToUpper(f), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", store.FormatYAML, "Export format (yaml|json)")
	cmd.Flags().StringVar(&dir, "export-dir", "", "Export directory (default: <root>/exports)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Write the export to stdout instead of a file")
	return cmd
}

func configPath(gf *GlobalFlags) string {
	if gf.ConfigFile != "" {
		return gf.ConfigFile
	}
	return filepath.Join(store.ExpandHome(gf.Root), config.FileName)
}

func newConfigCmd(gf *GlobalFlags, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Show or change configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(gf)
			if err != nil {
				return err
			}
			path := configPath(gf)
			_, statErr := os.Stat(path)
			exists := statErr == nil

			if gf.JSON {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"root":        store.ExpandHome(gf.Root),
					"config_path": path,
					"exists":      exists,
					"config":      cfg,
				})
			}

			fmt.Fprintln(stdout, "Config")
			fmt.Fprintln(stdout, "  Root:", store.ExpandHome(gf.Root))
			if exists {
				fmt.Fprintln(stdout, "  Config file:", path)
			} else {
				fmt.Fprintln(stdout, "  Config file:", path, "(not found; defaults shown)")
			}
			fmt.Fprintln(stdout)
			b, err := yaml.Marshal(cfg)
			if err != nil {
				return internalErr(err)
			}
			_, err = stdout.Write(b)
			return err
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update one key in the config file",
		Long:  "Allowed keys: " + strings.Join(config.Keys, ", "),
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only the file and defaults are persisted, never env overrides.
			cfg, err := config.Load(config.LoadOptions{
				Root: store.ExpandHome(gf.Root),
				File: gf.ConfigFile,
			})
			if err != nil {
				return usageErr(err)
			}
			key := args[0]
			if err := cfg.Set(key, strings.Join(args[1:], " ")); err != nil {
				return usageErr(err)
			}
			if err := cfg.Write(configPath(gf)); err != nil {
				return internalErr(err)
			}
			if !gf.Quiet {
				fmt.Fprintf(stdout, "Updated %s\n", strings.ToLower(key))
			}
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}
