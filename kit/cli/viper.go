// Package cli wires cobra flags, viper environment and config-file
// binding, and option destinations together so commands declare their
// options as data.
package cli

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Opt is a single command-line option.
type Opt struct {
	DestP    interface{} // pointer to the destination
	Flag     string
	Short    string // single-letter shorthand, optional
	Default  interface{}
	Desc     string
	Required bool
}

// NewOpt creates a new command line option.
func NewOpt(destP interface{}, flag string, dflt interface{}, desc string) Opt {
	return Opt{
		DestP:   destP,
		Flag:    flag,
		Default: dflt,
		Desc:    desc,
	}
}

// Program parses CLI options.
type Program struct {
	// Run is invoked by cobra on execute with the positional arguments
	// remaining after flag parsing.
	Run func(args []string) error
	// Name is the name of the program in help usage and the env var prefix.
	Name string
	// Opts are the command line/env var options to the program.
	Opts []Opt
}

// NewCommand creates a new cobra command to be executed that respects env
// vars and an optional config file.
//
// Uses the upper-case version of the program's name as a prefix to all
// environment variables. The env var <PREFIX>_CONFIG_PATH may name either
// a config file directly or a directory holding a file called "config"
// with a json, toml, yaml, or yml extension; absent that, the working
// directory is searched for the same.
//
// This is to simplify the viper/cobra boilerplate.
func NewCommand(v *viper.Viper, p *Program) (*cobra.Command, error) {
	var cmd = &cobra.Command{
		Use:           p.Name,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return p.Run(args)
		},
	}

	v.SetEnvPrefix(strings.ToUpper(p.Name))
	v.AutomaticEnv()
	// This normalizes "-" to an underscore in env names.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if configPath := v.GetString("CONFIG_PATH"); configPath != "" {
		switch strings.ToLower(path.Ext(configPath)) {
		case ".json", ".toml", ".yaml", ".yml":
			v.SetConfigFile(configPath)
		default:
			// A path without a recognized extension is a directory.
			v.AddConfigPath(configPath)
			v.SetConfigName("config")
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := BindOptions(v, cmd, p.Opts); err != nil {
		return nil, err
	}

	return cmd, nil
}

// BindOptions adds opts to the specified command and automatically
// registers those options with viper.
func BindOptions(v *viper.Viper, cmd *cobra.Command, opts []Opt) error {
	for _, o := range opts {
		switch destP := o.DestP.(type) {
		case *string:
			var d string
			if o.Default != nil {
				d = o.Default.(string)
			}
			cmd.Flags().StringVarP(destP, o.Flag, o.Short, d, o.Desc)
			if err := v.BindPFlag(o.Flag, cmd.Flags().Lookup(o.Flag)); err != nil {
				return err
			}
			*destP = v.GetString(o.Flag)
		case *int:
			var d int
			if o.Default != nil {
				d = o.Default.(int)
			}
			cmd.Flags().IntVarP(destP, o.Flag, o.Short, d, o.Desc)
			if err := v.BindPFlag(o.Flag, cmd.Flags().Lookup(o.Flag)); err != nil {
				return err
			}
			*destP = v.GetInt(o.Flag)
		case *bool:
			var d bool
			if o.Default != nil {
				d = o.Default.(bool)
			}
			cmd.Flags().BoolVarP(destP, o.Flag, o.Short, d, o.Desc)
			if err := v.BindPFlag(o.Flag, cmd.Flags().Lookup(o.Flag)); err != nil {
				return err
			}
			*destP = v.GetBool(o.Flag)
		default:
			// if you get an error here, sorry about that!
			// anyway, go ahead and make a PR and add another type.
			return fmt.Errorf("unknown destination type %t", o.DestP)
		}

		// Only mark the flag required when nothing else already
		// satisfies it; a value from the environment or a config file
		// counts as set.
		if o.Required && v.Get(o.Flag) == nil {
			if err := cmd.MarkFlagRequired(o.Flag); err != nil {
				return err
			}
		}
	}

	return nil
}
