// Package config the configuration
package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/joeshaw/envdecode"
	"github.com/shiroyk/cookiejar"
	"github.com/shiroyk/cookiejar/api"
	"github.com/shiroyk/cookiejar/lib/utils"
	"github.com/shiroyk/cookiejar/persist"
	"gopkg.in/yaml.v3"
)

// DefaultPath the default configuration file path
const DefaultPath = "~/.config/cookiejar/config.yml"

type configKey struct{}

// NewContext returns a context that contains the given Config.
func NewContext(ctx context.Context, config Config) context.Context {
	return context.WithValue(ctx, configKey{}, config)
}

// FromContext returns the Config stored in ctx by NewContext, or the default
// Config if there is none.
func FromContext(ctx context.Context) Config {
	if config, ok := ctx.Value(configKey{}).(Config); ok {
		return config
	}
	return DefaultConfig()
}

// Config The cookiejar configuration
type Config struct {
	// Jar the response cookie policy
	Jar cookiejar.Policy `yaml:"jar"`

	// Persist the cookie persistor
	Persist persist.Options `yaml:"persist"`

	// API the admin api service
	API api.Options `yaml:"api"`
}

// DefaultConfig The default configuration
func DefaultConfig() Config {
	return Config{
		Jar: cookiejar.DefaultPolicy(),
		Persist: persist.Options{
			Driver: persist.Bolt,
			Path:   persist.DefaultPath,
		},
		API: api.Options{
			Address:    api.DefaultAddress,
			Timeout:    api.DefaultTimeout,
			RequestLog: true,
		},
	}
}

// ReadConfig read configuration from the file, then the environment variables
// override it. If the configuration file is not existing returns the default configuration.
func ReadConfig(path string) (config Config, err error) {
	file, err := utils.ExpandPath(path)
	if err != nil {
		return config, err
	}
	config = DefaultConfig()
	if _, err = os.Stat(file); errors.Is(err, os.ErrNotExist) {
		if err = os.MkdirAll(filepath.Dir(file), os.ModePerm); err != nil {
			return config, err
		}
	} else if err = utils.ReadYaml(file, &config); err != nil {
		return config, err
	}

	return config, decodeEnv(&config)
}

// WriteConfig writes the configuration to the file, fails if the file exists.
func WriteConfig(path string, config Config) error {
	file, err := utils.ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err = os.Stat(file); !errors.Is(err, os.ErrNotExist) {
		return errors.New("configuration file is already exists")
	}
	if err = os.MkdirAll(filepath.Dir(file), os.ModePerm); err != nil {
		return err
	}
	bytes, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(file, bytes, 0o600)
}

func decodeEnv(config *Config) error {
	err := envdecode.Decode(config)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return err
	}
	return nil
}
