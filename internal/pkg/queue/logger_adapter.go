package queue

import (
	"fmt"

	"github.com/go-arcade/ideaflow/pkg/log"
	"go.uber.org/zap"
)

// asynqLogger feeds asynq's server logs into ours under component=asynq.
// Fatal is downgraded to an error so a broken redis connection never exits
// the api process; Run reports the failure instead.
type asynqLogger struct {
	l *zap.SugaredLogger
}

func newAsynqLogger() *asynqLogger {
	return &asynqLogger{l: log.Named("asynq")}
}

func (a *asynqLogger) Debug(args ...any) { a.l.Debug(fmt.Sprint(args...)) }
func (a *asynqLogger) Info(args ...any)  { a.l.Info(fmt.Sprint(args...)) }
func (a *asynqLogger) Warn(args ...any)  { a.l.Warn(fmt.Sprint(args...)) }
func (a *asynqLogger) Error(args ...any) { a.l.Error(fmt.Sprint(args...)) }
func (a *asynqLogger) Fatal(args ...any) { a.l.Errorw(fmt.Sprint(args...), "fatal", true) }
