package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvConfigFile names an explicit config file that replaces the search path.
const EnvConfigFile = "CONFIG_FILE"

// Load reads configuration from a YAML file and environment variables.
// configPath is the directory searched for configName (without extension),
// after which "." and "./config" are tried. A missing file is not an error;
// the caller's defaults and environment bindings apply instead.
func Load(configPath, configName string) (*viper.Viper, error) {
	v := viper.New()

	if file := os.Getenv(EnvConfigFile); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(configPath)
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return v, nil
}
