package atf

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dkoosis/atfgo/internal/version"
)

// NewCommand returns the cobra command serving the ATF command line for p.
// Errors returned by Execute are meant for p.ExitCode.
func NewCommand(p *Program) *cobra.Command {
	var o rawOptions
	cmd := &cobra.Command{
		Use:   p.name() + " [-l | test_case] [-r resfile] [-s srcdir] [-v var=value]...",
		Short: "ATF test program",
		Long: `Lists the test cases of this program with their ATF metadata (-l), or
runs a single test case and writes its result line to resfile.`,
		Version:       version.String(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			args, err := o.resolve(positional, p.stdout())
			if err != nil {
				return err
			}
			defer args.Close()
			if code := p.Execute(cmd.Context(), args); code != ExitOK {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
	cmd.SetOut(p.stdout())
	cmd.SetErr(p.stderr())
	cmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ConfigError{Err: err}
	})
	bindFlags(cmd.Flags(), &o)
	cmd.Flags().SortFlags = false
	return cmd
}

// ExitCode maps the error returned by cmd.Execute to an exit status,
// printing it first. Configuration errors also print usage.
func (p *Program) ExitCode(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, pflag.ErrHelp) {
		return ExitOK
	}
	p.errorf("%v", err)
	if isConfigError(err) {
		fmt.Fprint(p.stderr(), cmd.UsageString())
		return ExitUsage
	}
	return ExitFailure
}
