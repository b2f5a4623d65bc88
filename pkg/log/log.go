package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 全局 logger, Init 之前为 Nop
var (
	mu     sync.RWMutex
	logger = zap.NewNop()
	sugar  = logger.Sugar()
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

var ProviderSet = wire.NewSet(ProvideLogger)

// Logger is handed to components that want an explicit logger instead of
// the package helpers.
type Logger struct {
	Log *zap.SugaredLogger
}

func ProvideLogger(conf *Conf) (*Logger, error) {
	zl, err := NewLog(conf)
	if err != nil {
		return nil, err
	}
	return &Logger{Log: zl.Sugar()}, nil
}

// Conf 日志配置. Output is "stdout" or "file"; Format is "console" or "json".
type Conf struct {
	Output     string `mapstructure:"output"`
	Format     string `mapstructure:"format"`
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	KeepDays   int    `mapstructure:"keepDays"`
	RotateSize int    `mapstructure:"rotateSize"` // MB
	RotateNum  int    `mapstructure:"rotateNum"`
}

const defaultFilename = "ideaflow.log"

func SetDefaults() *Conf {
	return &Conf{
		Output:     "stdout",
		Format:     "console",
		Level:      "INFO",
		Path:       "./logs",
		Filename:   defaultFilename,
		KeepDays:   7,
		RotateSize: 100,
		RotateNum:  10,
	}
}

// Validate rejects a file output without a directory and fills the
// rotation settings left at zero.
func (c *Conf) Validate() error {
	switch strings.ToLower(c.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
	if c.Output != "file" {
		return nil
	}
	if c.Path == "" {
		return fmt.Errorf("log path is required when output is 'file'")
	}
	if c.Filename == "" {
		c.Filename = defaultFilename
	}
	if c.RotateSize <= 0 {
		c.RotateSize = 100
	}
	if c.RotateNum <= 0 {
		c.RotateNum = 10
	}
	if c.KeepDays <= 0 {
		c.KeepDays = 7
	}
	return nil
}

// NewLog builds a logger from conf and installs it as the global one.
func NewLog(conf *Conf) (*zap.Logger, error) {
	if conf == nil {
		conf = SetDefaults()
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}

	out := zapcore.AddSync(os.Stdout)
	if conf.Output == "file" {
		out = fileWriter(conf)
	}

	level.SetLevel(parseLogLevel(conf.Level))
	core := wrapCoreWithTrace(zapcore.NewCore(newEncoder(conf.Format), out, level))
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	mu.Lock()
	logger, sugar = zl, zl.Sugar()
	mu.Unlock()

	sugar.Debugw("log initialized", "output", conf.Output, "format", conf.Format, "level", conf.Level)
	return zl, nil
}

func Init(conf *Conf) error {
	_, err := NewLog(conf)
	return err
}

// SetLevel changes the level of the running logger; used by config hot reload.
func SetLevel(l string) {
	level.SetLevel(parseLogLevel(l))
}

func GetLevel() zapcore.Level {
	return level.Level()
}

// GetLogger returns the global sugared logger without the helper caller skip.
func GetLogger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.WithOptions(zap.AddCallerSkip(-1)).Sugar()
}

// Named returns a logger tagged with component, for adapters that feed
// third-party library logs into ours.
func Named(component string) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.WithOptions(zap.AddCallerSkip(-1)).Sugar().With("component", component)
}

func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return logger.Sync()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func newEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.MessageKey = "msg"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
	ec.EncodeDuration = zapcore.StringDurationEncoder
	ec.EncodeCaller = zapcore.ShortCallerEncoder

	if strings.EqualFold(format, "json") {
		ec.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

func parseLogLevel(l string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(l)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
