package cli

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Opt is a single command-line option
type Opt struct {
	DestP interface{} // pointer to the destination

	EnvVar   string
	Flag     string
	Required bool
	Short    rune // a short flag is always a single character

	Default interface{}
	Desc    string
}

// Program parses CLI options
type Program struct {
	// Run is invoked by cobra on execute.
	Run func() error
	// Name is the name of the program in help usage and the env var prefix.
	Name string
	// Opts are the command line/env var options to the program
	Opts []Opt
}

// NewCommand creates a new cobra command to be executed that respects env vars
// and an optional config file.
//
// Uses the upper-case version of the program's name as a prefix
// to all environment variables. The config file is located through
// <NAME>_CONFIG_PATH, either a file or a directory holding config.json,
// config.toml, config.yaml or config.yml. Without it the working directory
// is searched.
//
// Flags take precedence over env vars, env vars over the config file.
func NewCommand(v *viper.Viper, p *Program) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:          p.Name,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return p.Run()
		},
	}

	v.SetEnvPrefix(strings.ToUpper(p.Name))
	v.AutomaticEnv()
	// This normalizes "-" to an underscore in env names.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// The config file must be read before options are bound.
	if err := initializeConfig(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if err := BindOptions(v, cmd, p.Opts); err != nil {
		return nil, fmt.Errorf("failed to bind config options: %w", err)
	}
	return cmd, nil
}

func initializeConfig(v *viper.Viper) error {
	configPath := v.GetString("CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}

	switch strings.ToLower(path.Ext(configPath)) {
	case ".json", ".toml", ".yaml", ".yml":
		v.SetConfigFile(configPath)
	default:
		v.AddConfigPath(configPath)
	}

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

// BindOptions adds opts to the specified command and automatically
// registers those options with viper.
func BindOptions(v *viper.Viper, cmd *cobra.Command, opts []Opt) error {
	flags := cmd.Flags()
	for _, o := range opts {
		key := o.Flag
		if o.EnvVar != "" {
			key = o.EnvVar
		}
		short := ""
		if o.Short != 0 {
			short = string(o.Short)
		}

		switch destP := o.DestP.(type) {
		case *string:
			flags.StringVarP(destP, o.Flag, short, cast.ToString(o.Default), o.Desc)
			if err := bind(v, flags, o.Flag, key); err != nil {
				return err
			}
			*destP = v.GetString(key)
		case *int:
			flags.IntVarP(destP, o.Flag, short, cast.ToInt(o.Default), o.Desc)
			if err := bind(v, flags, o.Flag, key); err != nil {
				return err
			}
			*destP = v.GetInt(key)
		case *int32:
			flags.Int32VarP(destP, o.Flag, short, cast.ToInt32(o.Default), o.Desc)
			if err := bind(v, flags, o.Flag, key); err != nil {
				return err
			}
			*destP = v.GetInt32(key)
		case *int64:
			flags.Int64VarP(destP, o.Flag, short, cast.ToInt64(o.Default), o.Desc)
			if err := bind(v, flags, o.Flag, key); err != nil {
				return err
			}
			*destP = v.GetInt64(key)
		case *bool:
			flags.BoolVarP(destP, o.Flag, short, cast.ToBool(o.Default), o.Desc)
			if err := bind(v, flags, o.Flag, key); err != nil {
				return err
			}
			*destP = v.GetBool(key)
		case *time.Duration:
			flags.DurationVarP(destP, o.Flag, short, cast.ToDuration(o.Default), o.Desc)
			if err := bind(v, flags, o.Flag, key); err != nil {
				return err
			}
			*destP = v.GetDuration(key)
		case *[]string:
			flags.StringSliceVarP(destP, o.Flag, short, cast.ToStringSlice(o.Default), o.Desc)
			if err := bind(v, flags, o.Flag, key); err != nil {
				return err
			}
			*destP = v.GetStringSlice(key)
		case *zapcore.Level:
			var d zapcore.Level
			if o.Default != nil {
				d = o.Default.(zapcore.Level)
			}
			LevelVarP(flags, destP, o.Flag, short, d, o.Desc)
			if err := bind(v, flags, o.Flag, key); err != nil {
				return err
			}
			if s := v.GetString(key); s != "" {
				if err := destP.Set(s); err != nil {
					return fmt.Errorf("invalid value %q for %q: %w", s, o.Flag, err)
				}
			}
		case pflag.Value:
			if o.Default != nil {
				if err := destP.Set(cast.ToString(o.Default)); err != nil {
					return fmt.Errorf("invalid default %v for %q: %w", o.Default, o.Flag, err)
				}
			}
			flags.VarP(destP, o.Flag, short, o.Desc)
			if err := bind(v, flags, o.Flag, key); err != nil {
				return err
			}
			if s := v.GetString(key); s != "" {
				if err := destP.Set(s); err != nil {
					return fmt.Errorf("invalid value %q for %q: %w", s, o.Flag, err)
				}
			}
		default:
			// if you get an error here, go ahead and add another type.
			return fmt.Errorf("unknown destination type %T for %q", o.DestP, o.Flag)
		}

		// A value from the environment or the config file satisfies a required flag.
		if o.Required && !v.IsSet(key) {
			if err := cmd.MarkFlagRequired(o.Flag); err != nil {
				return err
			}
		}
	}
	return nil
}

func bind(v *viper.Viper, flags *pflag.FlagSet, flag, key string) error {
	if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
		return fmt.Errorf("failed to bind flag %q: %w", flag, err)
	}
	return nil
}
