package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/tarrestore/internal/filter"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
	quiet      bool
	noProgress bool
	logFile    string
}

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

var _ pflag.Value = (*filterFlag)(nil)

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	var showVersion bool

	rootCmd := &cobra.Command{
		Use:   "tarrestore",
		Short: "Restore ustar and split backup archives",
		Long: `tarrestore lists and unpacks the ustar archives written by the backup
pipeline, including archives split into numbered parts described by a
"name|size" manifest. Extracted entries are owned by the requested app user.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "tarrestore %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/tarrestore/config.toml)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&g.quiet, "quiet", "q", false, "suppress all output except errors")
	pf.BoolVar(&g.noProgress, "no-progress", false, "disable progress display")
	pf.StringVar(&g.logFile, "log", "", "write structured JSON log to FILE")

	rootCmd.AddCommand(
		newListCmd(g),
		newUnpackCmd(g),
		newUnpackSplitCmd(g),
		newUnpackPartCmd(g),
		newCheckSplitCmd(g),
		newDocsCmd(),
	)
	return rootCmd
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
