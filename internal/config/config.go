package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/mi-ops/ansible-ovirt-inventory/pkg/inventory"
)

// Load reads the tool configuration with Viper.
// This covers the tool's own settings only; the datacenter definitions live in
// a separate INI file pointed to by the 'inventory.path' key.
func Load() (*inventory.Config, error) {
	v := viper.New()

	// Load YAML configuration.
	path, ok := os.LookupEnv("OVI_CONFIG_FILE")
	if ok {
		// Load a specific config file.
		v.SetConfigFile(path)
	} else {
		// Try to find the config file in standard locations.
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to determine user's home directory")
		}

		v.SetConfigName("ovirt-inventory")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(home + "/.ansible")
		v.AddConfigPath("/etc/ansible")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	// Setup environment variables handling.
	v.SetEnvPrefix("ovi")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults.
	v.SetDefault("datasource", "ovirt")

	v.SetDefault("inventory.path", "ovirt.ini")

	v.SetDefault("ovirt.timeout", "60s")

	v.SetDefault("log.level", "info")

	cfg := &inventory.Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}

	return cfg, nil
}
