package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag describes a CLI flag bound to a config key.
type Flag struct {
	Name        string
	Shorthand   string
	ViperKey    string
	Description string
}

// FlagSet maps registry keys to flag definitions.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagListen   = "listen"
	FlagDebug    = "debug"
	FlagProvider = "provider"
	FlagModel    = "model"
	FlagJSONLog  = "log-json"
)

// Flags is the set of flags shared by the CLI commands.
var Flags = FlagSet{
	FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "server.listen",
		Description: "Address for the HTTP server to listen on",
	},
	FlagDebug: {
		Name:        "debug",
		ViperKey:    "log.debug",
		Description: "Enable debug logging",
	},
	FlagProvider: {
		Name:        "provider",
		ViperKey:    "llm.provider",
		Description: "LLM provider: openai or azure_openai",
	},
	FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "llm.model",
		Description: "Model name for the openai provider",
	},
	FlagJSONLog: {
		Name:        "log-json",
		ViperKey:    "log.json",
		Description: "Write logs as JSON",
	},
}

// AddStringFlag registers a string flag on cmd from fs, defaulting to the
// config default for its key.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, persistent bool) {
	def, ok := fs[key]
	if !ok {
		return
	}
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	flags.StringP(def.Name, def.Shorthand, defaults().GetString(def.ViperKey), def.Description)
}

// AddBoolFlag registers a bool flag on cmd from fs.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, persistent bool) {
	def, ok := fs[key]
	if !ok {
		return
	}
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	flags.BoolP(def.Name, def.Shorthand, defaults().GetBool(def.ViperKey), def.Description)
}

// BindRegisteredFlags binds flags already registered on cmd to v, so that a
// flag set on the command line overrides env and file values.
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, keys ...string) error {
	for _, key := range keys {
		def, ok := fs[key]
		if !ok {
			continue
		}
		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(def.ViperKey, f); err != nil {
			return err
		}
	}
	return nil
}

func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
