package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/redis/go-redis/v9"
)

// Redis 配置. Mode "single" (default) dials Address directly; "sentinel"
// treats Address as a comma separated sentinel list for MasterName.
type Redis struct {
	Mode             string        `mapstructure:"mode"`
	Address          string        `mapstructure:"address"`
	Password         string        `mapstructure:"password"`
	DB               int           `mapstructure:"db"`
	PoolSize         int           `mapstructure:"poolSize"`
	UseTLS           bool          `mapstructure:"useTLS"`
	MasterName       string        `mapstructure:"masterName"`
	SentinelUsername string        `mapstructure:"sentinelUsername"`
	SentinelPassword string        `mapstructure:"sentinelPassword"`
	DialTimeout      time.Duration `mapstructure:"dialTimeout"`
	ReadTimeout      time.Duration `mapstructure:"readTimeout"`
	WriteTimeout     time.Duration `mapstructure:"writeTimeout"`
}

// Enabled reports whether a remote tier is configured.
func (r Redis) Enabled() bool {
	return r.Address != ""
}

func (r Redis) tlsConfig() *tls.Config {
	if !r.UseTLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// failoverOptions is only valid for sentinel mode.
func (r Redis) failoverOptions() (*redis.FailoverOptions, error) {
	if r.MasterName == "" {
		return nil, fmt.Errorf("redis sentinel mode needs masterName")
	}
	addrs := strings.Split(r.Address, ",")
	for i := range addrs {
		addrs[i] = strings.TrimSpace(addrs[i])
	}
	return &redis.FailoverOptions{
		MasterName:       r.MasterName,
		SentinelAddrs:    addrs,
		SentinelUsername: r.SentinelUsername,
		SentinelPassword: r.SentinelPassword,
		Password:         r.Password,
		DB:               r.DB,
		PoolSize:         r.PoolSize,
		DialTimeout:      r.DialTimeout,
		ReadTimeout:      r.ReadTimeout,
		WriteTimeout:     r.WriteTimeout,
		TLSConfig:        r.tlsConfig(),
	}, nil
}

func (r Redis) singleOptions() *redis.Options {
	return &redis.Options{
		Addr:         r.Address,
		Password:     r.Password,
		DB:           r.DB,
		PoolSize:     r.PoolSize,
		DialTimeout:  r.DialTimeout,
		ReadTimeout:  r.ReadTimeout,
		WriteTimeout: r.WriteTimeout,
		TLSConfig:    r.tlsConfig(),
	}
}

// NewRedis dials and pings redis. The same client backs the cache and the
// deferred recount queue.
func NewRedis(cfg Redis) (*redis.Client, error) {
	var client *redis.Client
	switch strings.ToLower(cfg.Mode) {
	case "", "single":
		client = redis.NewClient(cfg.singleOptions())
	case "sentinel":
		opts, err := cfg.failoverOptions()
		if err != nil {
			return nil, err
		}
		client = redis.NewFailoverClient(opts)
	default:
		return nil, fmt.Errorf("illegal redis mode %q", cfg.Mode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Address, err)
	}
	log.Infow("redis connected", "mode", cfg.Mode, "db", cfg.DB)
	return client, nil
}
