package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitInternal = 10
)

type GlobalFlags struct {
	Root       string
	ConfigFile string
	JSON       bool
	Quiet      bool
	Verbose    bool
}

// exitError carries the process exit code for a failed command. The message
// has already been printed when silent is set.
type exitError struct {
	code   int
	err    error
	silent bool
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageErr(err error) error    { return &exitError{code: ExitUsage, err: err} }
func internalErr(err error) error { return &exitError{code: ExitInternal, err: err} }

func defaultRoot() string {
	if env := os.Getenv("DUKE_ROOT"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	if home != "" {
		return filepath.Join(home, ".duke")
	}
	return ".duke"
}

// Run executes the CLI and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gf := &GlobalFlags{}
	root := newRootCmd(gf, stdin, stdout, stderr)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if !ee.silent {
			fmt.Fprintln(stderr, "duke:", ee.Error())
		}
		return ee.code
	}
	// Flag and argument errors come from cobra itself.
	fmt.Fprintln(stderr, "duke:", err)
	return ExitUsage
}

func newRootCmd(gf *GlobalFlags, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duke",
		Short: "duke: line-oriented task manager",
		Long: `duke reads one command per line:

  list                                   show every task
  todo <name>                            add a plain task
  deadline <name> /by <yyyy-mm-dd>       add a task with a due date
  event <name> /from <start> /to <end>   add a task with a time span
  mark <n> | unmark <n>                  set or clear the done flag
  delete <n>                             remove a task
  bye                                    save and quit`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(gf, stderr)
			if err != nil {
				return err
			}
			defer a.close()
			return a.session(cmd.Context(), stdin, stdout)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&gf.Root, "root", defaultRoot(), "Store root (default: ~/.duke or DUKE_ROOT)")
	pf.StringVar(&gf.ConfigFile, "config", "", "Config file (default: <root>/config.yaml)")
	pf.BoolVar(&gf.JSON, "json", false, "Print NDJSON records instead of text blocks")
	pf.BoolVarP(&gf.Quiet, "quiet", "q", false, "Suppress banner and informational output")
	pf.BoolVarP(&gf.Verbose, "verbose", "v", false, "Debug logging to stderr")
	cmd.MarkFlagsMutuallyExclusive("quiet", "verbose")

	cmd.AddCommand(
		newInitCmd(gf, stdout),
		newExecCmd(gf, stdout, stderr),
		newExportCmd(gf, stdout, stderr),
		newConfigCmd(gf, stdout),
	)
	return cmd
}
