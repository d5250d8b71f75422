package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AdminConfig tunes the registry-driven list and export views.
type AdminConfig struct {
	DefaultPageSize int `mapstructure:"defaultPageSize"`
	MaxPageSize     int `mapstructure:"maxPageSize"`
	ExportRowLimit  int `mapstructure:"exportRowLimit"`
}

func DefaultAdminConfig() AdminConfig {
	return AdminConfig{
		DefaultPageSize: 100,
		MaxPageSize:     250,
		ExportRowLimit:  50_000,
	}
}

type AdminConfigHolder struct {
	current atomic.Value // holds AdminConfig
}

// NewStaticAdminConfigHolder returns a holder that never reloads.
func NewStaticAdminConfigHolder(cfg AdminConfig) *AdminConfigHolder {
	holder := &AdminConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewAdminConfigHolder() (*AdminConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("admin")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/solarops")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SOLAROPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return loadAdminConfig(v, true)
}

func loadAdminConfig(v *viper.Viper, watch bool) (*AdminConfigHolder, error) {
	defaults := DefaultAdminConfig()
	v.SetDefault("admin.defaultPageSize", defaults.DefaultPageSize)
	v.SetDefault("admin.maxPageSize", defaults.MaxPageSize)
	v.SetDefault("admin.exportRowLimit", defaults.ExportRowLimit)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg AdminConfig
	if err := v.UnmarshalKey("admin", &cfg); err != nil {
		return nil, err
	}
	if err := validateAdminConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticAdminConfigHolder(cfg)
	if !watch || !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated AdminConfig
		if err := v.UnmarshalKey("admin", &updated); err != nil {
			log.Printf("[admin-config] reload failed: %v", err)
			return
		}
		if err := validateAdminConfig(updated); err != nil {
			log.Printf("[admin-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[admin-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *AdminConfigHolder) Get() AdminConfig {
	return h.current.Load().(AdminConfig)
}

func validateAdminConfig(cfg AdminConfig) error {
	if cfg.DefaultPageSize <= 0 {
		return errors.New("admin.defaultPageSize must be positive")
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		return errors.New("admin.maxPageSize must be >= admin.defaultPageSize")
	}
	if cfg.ExportRowLimit <= 0 {
		return errors.New("admin.exportRowLimit must be positive")
	}
	return nil
}
