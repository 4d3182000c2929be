// Package config provides configuration loading and validation utilities.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from YAML files and environment variables,
// validates it, and returns the resulting Config along with the viper
// instance for change watching.
func Load() (*Config, *viper.Viper, error) {
	if err := godotenv.Load(".env.local", ".env"); err != nil {
		// missing env files are fine
		_ = err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, nil, err
	}
	cfg.AppEnv = env

	return cfg, v, nil
}

// Watch re-reads and re-validates the config file whenever it changes on
// disk and hands the result to onChange. Invalid updates are logged and
// dropped, keeping the running config intact.
func Watch(v *viper.Viper, log *slog.Logger, onChange func(*Config)) {
	v.OnConfigChange(func(event fsnotify.Event) {
		if log != nil {
			log.Info("config file changed", slog.String("file", event.Name))
		}

		cfg, err := unmarshal(v)
		if err != nil {
			if log != nil {
				log.Warn("ignoring invalid config update", slog.Any("error", err))
			}
			return
		}

		onChange(cfg)
	})
	v.WatchConfig()
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
