package config

import (
	"errors"
	"strings"

	"github.com/lectern-cli/lectern/constant"
	"github.com/lectern-cli/lectern/filesystem"
	"github.com/lectern-cli/lectern/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps configuration keys onto environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup registers defaults and env bindings, then reads lectern.toml from the config directory if present.
func Setup() error {
	viper.SetConfigName(constant.Lectern)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Lectern)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

// Write persists the current settings, creating the config file on first use.
func Write() error {
	err := viper.WriteConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return viper.SafeWriteConfig()
	}
	return err
}

// Reset restores a single key to its registered default.
func Reset(k string) bool {
	field, ok := Default[k]
	if !ok {
		return false
	}
	viper.Set(k, field.Value)
	return true
}
