// The chkconfig command checks, lists, and sets boolean configuration
// flags backed by plain files.
//
// With no positional arguments it lists every flag. With one argument it
// checks a single flag, exiting 0 when the flag is on and 1 when it is
// off. With two arguments it sets a flag to the given on/off state.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/influxdata/chkconfig"
	"github.com/influxdata/chkconfig/kit/cli"
	cerrors "github.com/influxdata/chkconfig/kit/errors"
	"github.com/influxdata/chkconfig/logger"
)

// Populated via ldflags at release build time.
var (
	version = "dev"
	commit  = "none"
)

type chkconfigFlags struct {
	stateDirectory      string
	defaultDirectory    string
	useDefaultDirectory bool
	force               bool
	quiet               bool
	sortByState         bool
	showOrigin          bool
	showVersion         bool
	logLevel            zapcore.Level
}

var flags chkconfigFlags

func newCommand() (*cobra.Command, error) {
	prog := &cli.Program{
		Name: "chkconfig",
		Run:  run,
		Opts: []cli.Opt{
			{
				DestP:   &flags.stateDirectory,
				Flag:    "state-directory",
				Default: chkconfig.DefaultStateDirectory,
				Desc:    "read/write flag state directory",
			},
			{
				DestP:   &flags.defaultDirectory,
				Flag:    "default-directory",
				Default: chkconfig.DefaultDefaultDirectory,
				Desc:    "read-only flag state fallback default directory",
			},
			{
				DestP:   &flags.useDefaultDirectory,
				Flag:    "use-default-directory",
				Short:   "d",
				Default: false,
				Desc:    "include the default directory as a fallback",
			},
			{
				DestP:   &flags.force,
				Flag:    "force",
				Short:   "f",
				Default: false,
				Desc:    "forcibly create the flag state file if it does not exist",
			},
			{
				DestP:   &flags.quiet,
				Flag:    "quiet",
				Short:   "q",
				Default: false,
				Desc:    "work silently, even if an error occurs",
			},
			{
				DestP:   &flags.sortByState,
				Flag:    "state",
				Short:   "s",
				Default: false,
				Desc:    "print the state of every flag, sorting by state",
			},
			{
				DestP:   &flags.showOrigin,
				Flag:    "origin",
				Short:   "o",
				Default: false,
				Desc:    "include the origin of every flag state when listing",
			},
			{
				DestP:   &flags.showVersion,
				Flag:    "version",
				Short:   "V",
				Default: false,
				Desc:    "print version information, then exit",
			},
		},
	}

	cmd, err := cli.NewCommand(viper.New(), prog)
	if err != nil {
		return nil, err
	}
	cmd.Short = "Check, list, and set file-backed configuration flags"
	cmd.Use = "chkconfig [flags] [<flag> [on|off]]"
	cmd.Args = cobra.MaximumNArgs(2)
	cli.LevelVar(cmd.Flags(), &flags.logLevel, "log-level", zapcore.InfoLevel,
		"diagnostic verbosity (debug, info, warn, error)")

	return cmd, nil
}

func main() {
	cmd, err := newCommand()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if executeCmd(cmd, os.Stderr) != nil {
		os.Exit(1)
	}
}

// executeCmd runs the command and surfaces errors nothing else has
// diagnosed. Failures out of the store and the state parser are
// *cerrors.Error values that run already logged, and the sentinels are
// silent or logged by construction; what remains are cobra's own
// argument and flag errors, which SilenceErrors would otherwise swallow
// entirely.
func executeCmd(cmd *cobra.Command, errW io.Writer) error {
	err := cmd.Execute()
	if err == nil {
		return nil
	}

	if flags.quiet || errors.Is(err, errUsage) || errors.Is(err, errFlagOff) {
		return err
	}
	var derr *cerrors.Error
	if errors.As(err, &derr) {
		return err
	}

	fmt.Fprintln(errW, "Error:", err)
	fmt.Fprintln(errW, "See 'chkconfig --help' for usage.")
	return err
}

func run(args []string) error {
	if flags.showVersion {
		fmt.Printf("chkconfig %s (git: %s)\n", version, commit)
		return nil
	}

	log := zap.NewNop()
	if !flags.quiet {
		log = logger.New(os.Stderr, flags.logLevel)
	}

	if err := validateUsage(log, args); err != nil {
		return err
	}

	store, err := chkconfig.NewStore(
		chkconfig.WithStateDirectory(flags.stateDirectory),
		chkconfig.WithDefaultDirectory(flags.defaultDirectory),
		chkconfig.WithForceState(flags.force),
		chkconfig.WithUseDefaultDirectory(flags.useDefaultDirectory),
	)
	if err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return err
	}

	switch len(args) {
	case 0:
		return listAll(store, log, os.Stdout)
	case 1:
		return checkOne(store, log, args[0])
	default:
		return setOne(store, log, args[0], args[1])
	}
}

// validateUsage enforces the mutual exclusions between the list, check,
// and set usages.
func validateUsage(log *zap.Logger, args []string) error {
	if flags.force && len(args) < 2 {
		log.Error("the -f/--force option is mutually exclusive with the check or list usage; please use one or the other")
		return errUsage
	}
	if flags.sortByState && len(args) > 0 {
		log.Error("the -s/--state option is mutually exclusive with the check or set usage; please use one or the other")
		return errUsage
	}
	return nil
}

var errUsage = fmt.Errorf("usage error")

// errFlagOff distinguishes "the flag is off" from operational failures;
// both exit 1, but the former is not worth a diagnostic.
var errFlagOff = fmt.Errorf("flag is off")

func listAll(store *chkconfig.Store, log *zap.Logger, out io.Writer) error {
	tuples, err := store.CopyAll()
	if err != nil {
		log.Error("failed to list flags", zap.Error(err))
		return err
	}

	// By default, flags are shown sorted by flag name; if the '-s'
	// option is asserted, sort them by state instead.
	if flags.sortByState {
		chkconfig.SortByState(tuples)
	} else {
		chkconfig.SortByFlag(tuples)
	}

	w := tabwriter.NewWriter(out, 8, 2, 2, ' ', 0)
	if flags.showOrigin {
		fmt.Fprintf(w, "Flag\tState\tOrigin\n")
		fmt.Fprintf(w, "====\t=====\t======\n")
	} else {
		fmt.Fprintf(w, "Flag\tState\n")
		fmt.Fprintf(w, "====\t=====\n")
	}

	for _, tuple := range tuples {
		if flags.showOrigin {
			fmt.Fprintf(w, "%s\t%s\t%s\n", tuple.Flag, chkconfig.FormatState(tuple.State), tuple.Origin)
		} else {
			fmt.Fprintf(w, "%s\t%s\n", tuple.Flag, chkconfig.FormatState(tuple.State))
		}
	}

	return w.Flush()
}

func checkOne(store *chkconfig.Store, log *zap.Logger, flag string) error {
	state, err := store.State(flag)
	if err != nil {
		log.Error("failed to get flag state",
			zap.String("flag", flag),
			zap.Error(err))
		return err
	}
	if !state {
		return errFlagOff
	}
	return nil
}

func setOne(store *chkconfig.Store, log *zap.Logger, flag, stateString string) error {
	state, err := chkconfig.ParseState(stateString)
	if err != nil {
		log.Error("unrecognized or unsupported state value; please use 'off' or 'on'",
			zap.String("state", stateString))
		return err
	}

	if err := store.SetState(flag, state); err != nil {
		log.Error("failed to set flag",
			zap.String("flag", flag),
			zap.String("state", stateString),
			zap.Error(err))
		return err
	}
	return nil
}
