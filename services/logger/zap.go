package logsvc

import (
	"go.uber.org/zap"

	"github.com/trezcool/darasa/core"
)

// ZapLogger is the development logger: structured console output,
// no external reporting.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*ZapLogger)(nil)

func NewZapLogger(conf *core.Config) *ZapLogger {
	var logger *zap.Logger
	var err error
	if conf.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{sugar: logger.Sugar()}
}

func (l ZapLogger) kvs(args []interface{}) []interface{} {
	kvs := make([]interface{}, 0, 2*len(args))
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			kvs = append(kvs, "error", err)
		} else {
			kvs = append(kvs, "data", arg)
		}
	}
	return kvs
}

func (l ZapLogger) Debug(msg string, args ...interface{}) { l.sugar.Debugw(msg, l.kvs(args)...) }
func (l ZapLogger) Info(msg string, args ...interface{})  { l.sugar.Infow(msg, l.kvs(args)...) }
func (l ZapLogger) Warn(msg string, args ...interface{})  { l.sugar.Warnw(msg, l.kvs(args)...) }
func (l ZapLogger) Error(msg string, args ...interface{}) { l.sugar.Errorw(msg, l.kvs(args)...) }
func (l ZapLogger) Fatal(msg string, args ...interface{}) { l.sugar.Fatalw(msg, l.kvs(args)...) }
