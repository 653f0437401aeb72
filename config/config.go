package config

import (
	"time"

	v "github.com/spf13/viper"
)

// Load reads configuration from a configuration file or the environment.
func Load() error {
	v.SetConfigName("pvfs")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/")
	v.AddConfigPath("$HOME/.pvfs")

	v.SetDefault("root", "/var/lib/pvfs")
	v.SetDefault("store_driver", "Bolt")
	v.SetDefault("data_driver", "File")
	v.SetDefault("block_size", 4096)
	v.SetDefault("cache_ttl", time.Second)
	v.SetDefault("check_permissions", false)

	v.BindEnv("os_auth_url")
	v.BindEnv("os_auth_token")
	v.BindEnv("os_tenant_name")
	v.BindEnv("os_username")
	v.BindEnv("os_password")
	v.BindEnv("os_region_name")
	v.BindEnv("os_storage_url")
	v.BindEnv("os_container_name")

	err := v.ReadInConfig()
	if _, missing := err.(v.ConfigFileNotFoundError); missing {
		return nil
	}
	return err
}
