package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string
	StaticDir string
}

// Load reads an optional config.yaml from the working directory with
// TAREAS_* environment overrides (e.g. TAREAS_SERVER_PORT).
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("tareas")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.static_dir", "web/static")
	v.SetDefault("database.path", "tareas.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; anything else is a real error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	return Config{
		Port:      v.GetString("server.port"),
		DBPath:    v.GetString("database.path"),
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		StaticDir: v.GetString("server.static_dir"),
	}, nil
}
