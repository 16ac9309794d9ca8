package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Report cache backends.
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// EngineConfig tunes report generation. It is read from engine.yml under
// the "engine" key and may change at runtime.
type EngineConfig struct {
	RoundingPlaces int32             `mapstructure:"rounding_places"`
	MaxRuleDepth   int               `mapstructure:"max_rule_depth"`
	Parallelism    int               `mapstructure:"parallelism"`
	PersistReports bool              `mapstructure:"persist_reports"`
	ReportCache    ReportCacheConfig `mapstructure:"report_cache"`
}

type ReportCacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RoundingPlaces: 2,
		MaxRuleDepth:   32,
		Parallelism:    4,
		PersistReports: true,
		ReportCache: ReportCacheConfig{
			Backend: CacheBackendMemory,
			TTL:     15 * time.Minute,
		},
	}
}

func (c EngineConfig) Validate() error {
	if c.RoundingPlaces < 0 || c.RoundingPlaces > 8 {
		return fmt.Errorf("engine.rounding_places must be between 0 and 8, got %d", c.RoundingPlaces)
	}
	if c.MaxRuleDepth <= 0 {
		return errors.New("engine.max_rule_depth must be positive")
	}
	if c.Parallelism <= 0 {
		return errors.New("engine.parallelism must be positive")
	}
	switch c.ReportCache.Backend {
	case CacheBackendNone, CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("engine.report_cache.backend %q is not one of none, memory, redis", c.ReportCache.Backend)
	}
	if c.ReportCache.Backend != CacheBackendNone && c.ReportCache.TTL <= 0 {
		return errors.New("engine.report_cache.ttl must be positive")
	}
	return nil
}

type EngineConfigHolder struct {
	current atomic.Value // holds EngineConfig
}

// NewStaticEngineConfigHolder wraps a fixed configuration.
func NewStaticEngineConfigHolder(cfg EngineConfig) *EngineConfigHolder {
	holder := &EngineConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// NewEngineConfigHolder loads engine.yml from file, or from the standard
// search paths when file is empty, and reloads it when it changes on disk.
// A missing engine.yml leaves the defaults in place.
func NewEngineConfigHolder(log *zap.Logger, file string) (*EngineConfigHolder, error) {
	log = log.Named("config.engine")
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("engine")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/fulfillment-billing")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FULFILLMENT_BILLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultEngineConfig()
	v.SetDefault("engine.rounding_places", defaults.RoundingPlaces)
	v.SetDefault("engine.max_rule_depth", defaults.MaxRuleDepth)
	v.SetDefault("engine.parallelism", defaults.Parallelism)
	v.SetDefault("engine.persist_reports", defaults.PersistReports)
	v.SetDefault("engine.report_cache.backend", defaults.ReportCache.Backend)
	v.SetDefault("engine.report_cache.ttl", defaults.ReportCache.TTL)

	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, err
		}
		found = false
	}

	cfg, err := decodeEngineConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticEngineConfigHolder(cfg)
	if !found {
		log.Info("engine config file not found, using defaults")
		return holder, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeEngineConfig(v)
		if err != nil {
			log.Warn("engine config reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("engine config reloaded", zap.String("file", e.Name))
	})
	v.WatchConfig()

	return holder, nil
}

func (h *EngineConfigHolder) Get() EngineConfig {
	return h.current.Load().(EngineConfig)
}

func decodeEngineConfig(v *viper.Viper) (EngineConfig, error) {
	// Unmarshal, unlike UnmarshalKey, resolves env overrides of nested keys.
	var wrapper struct {
		Engine EngineConfig `mapstructure:"engine"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return EngineConfig{}, err
	}
	cfg := wrapper.Engine
	cfg.ReportCache.Backend = strings.ToLower(strings.TrimSpace(cfg.ReportCache.Backend))
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}
