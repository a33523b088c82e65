package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var replacer = strings.NewReplacer(".", "_", "-", "_")

type argType interface {
	string | bool | int | time.Duration | []string | map[string]string
}

// envName is the variable seeding the flag: the explicit Env, or the flag
// name upper-cased with separators folded to underscores.
func (b boundEnvVar[T]) envName() string {
	if b.Env != nil {
		return *b.Env
	}
	return strings.ToUpper(replacer.Replace(b.Name))
}

func (b boundEnvVar[T]) shorthand() string {
	if b.Short == nil {
		return ""
	}
	return *b.Short
}

// bindEnvMap registers one persistent flag per entry of m. A set environment
// variable replaces the configured default, and both the flag and the
// variable are bound into viper under the flag name.
func bindEnvMap[T argType](cmd *cobra.Command, m map[*T]boundEnvVar[T]) {
	flags := cmd.PersistentFlags()
	for v, cfg := range m {
		env := cfg.envName()
		desc := fmt.Sprintf("[%s] %s", env, cfg.Description)
		_, fromEnv := os.LookupEnv(env)

		switch vt := any(v).(type) {
		case *string:
			def := *vt
			if fromEnv {
				def = viper.GetString(env)
			}
			flags.StringVarP(vt, cfg.Name, cfg.shorthand(), def, desc)
		case *bool:
			def := *vt
			if fromEnv {
				def = viper.GetBool(env)
			}
			flags.BoolVarP(vt, cfg.Name, cfg.shorthand(), def, desc)
		case *int:
			def := *vt
			flags.CountVarP(vt, cfg.Name, cfg.shorthand(), desc)
			if fromEnv {
				def = viper.GetInt(env)
			}
			_ = flags.Lookup(cfg.Name).Value.Set(strconv.Itoa(def))
		case *time.Duration:
			def := *vt
			if fromEnv {
				def = viper.GetDuration(env)
			}
			flags.DurationVarP(vt, cfg.Name, cfg.shorthand(), def, desc)
		case *[]string:
			def := *vt
			if fromEnv {
				def = viper.GetStringSlice(env)
			}
			flags.StringSliceVarP(vt, cfg.Name, cfg.shorthand(), def, desc)
		case *map[string]string:
			def := *vt
			if fromEnv {
				def = viper.GetStringMapString(env)
			}
			flags.StringToStringVarP(vt, cfg.Name, cfg.shorthand(), def, desc)
		default:
			log.Panicf("command-args parsing error: unhandled default case for type %T", vt)
		}

		_ = viper.BindPFlag(cfg.Name, flags.Lookup(cfg.Name))
		_ = viper.BindEnv(cfg.Name, env)
		if cfg.Hidden {
			_ = flags.MarkHidden(cfg.Name)
		}
	}
}
