package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/ideaflow/internal/pkg/actor"
	"github.com/go-arcade/ideaflow/internal/pkg/directory"
	"github.com/go-arcade/ideaflow/internal/pkg/ideastore"
	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/internal/pkg/queue"
	"github.com/go-arcade/ideaflow/pkg/cache"
	"github.com/go-arcade/ideaflow/pkg/database"
	"github.com/go-arcade/ideaflow/pkg/http"
	"github.com/go-arcade/ideaflow/pkg/log"
	"github.com/go-arcade/ideaflow/pkg/metrics"
	"github.com/go-arcade/ideaflow/pkg/trace"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀, e.g. IDEAFLOW_DATABASE_MYSQL_HOST
const EnvPrefix = "IDEAFLOW"

// ReconcileConfig schedules the vote drift repair job.
type ReconcileConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"`
	// Timeout bounds a single reconcile run
	Timeout time.Duration `mapstructure:"timeout"`
}

func (c *ReconcileConfig) SetDefaults() {
	if c.Spec == "" {
		c.Spec = "@every 5m"
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Minute
	}
}

type AppConfig struct {
	Log       log.Conf
	Http      http.Http
	Database  database.Database
	Cache     cache.Conf
	Queue     queue.Conf
	Notify    notify.Conf
	Directory directory.Conf
	IdeaStore ideastore.Conf
	Actor     actor.Conf
	Metrics   metrics.MetricsConfig
	Trace     trace.Conf
	Reconcile ReconcileConfig
}

var (
	cfg  AppConfig
	once sync.Once
)

func NewConf(confDir string) AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	return cfg
}

// LoadConfigFile load config file
func LoadConfigFile(confDir string) (AppConfig, error) {
	var conf AppConfig

	config := viper.New()
	config.SetConfigFile(confDir) //文件名
	config.SetEnvPrefix(EnvPrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()
	if err := config.ReadInConfig(); err != nil {
		return conf, fmt.Errorf("failed to read configuration file: %w", err)
	}

	if err := config.Unmarshal(&conf); err != nil {
		return conf, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}

	// 只有日志级别支持热更新，其余配置需要重启
	config.WatchConfig()
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("configuration changed", "file", e.Name)
		var next AppConfig
		if err := config.Unmarshal(&next); err != nil {
			log.Errorw("failed to unmarshal configuration file", "error", err)
			return
		}
		if next.Log.Level != "" {
			log.SetLevel(next.Log.Level)
		}
	})

	log.Infow("config file loaded",
		"path", confDir,
	)
	return conf, nil
}
