package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzap "github.com/hertz-contrib/logger/zap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"RostrDating/config"
)

var (
	// Logger 在 Init 之前为 Nop，测试中可以直接使用
	Logger   = zap.NewNop()
	logClose io.Closer
)

// zap 与 hlog 的级别一一对应，未知级别按 info 处理
var levels = map[string]struct {
	zap  zapcore.Level
	hlog hlog.Level
}{
	"DEBUG": {zapcore.DebugLevel, hlog.LevelDebug},
	"INFO":  {zapcore.InfoLevel, hlog.LevelInfo},
	"WARN":  {zapcore.WarnLevel, hlog.LevelWarn},
	"ERROR": {zapcore.ErrorLevel, hlog.LevelError},
}

// Init 同时接管 hertz 框架日志，业务日志统一带 service 字段
func Init() {
	lvl, ok := levels[strings.ToUpper(config.Cfg.LoggerLevel)]
	if !ok {
		lvl = levels["INFO"]
	}

	atomic := zap.NewAtomicLevelAt(lvl.zap)
	zapOpts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	}
	// 生产环境对同一条消息做采样，启动捕获接口在流量高峰时日志量很大
	if config.Cfg.IsProduction() {
		zapOpts = append(zapOpts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, time.Second, 100, 10)
		}))
	}

	hz := hertzzap.NewLogger(
		hertzzap.WithCoreEnc(newEncoder(useConsole())),
		hertzzap.WithCoreWs(newWriteSyncer(config.Cfg.LoggerOutputPath)),
		hertzzap.WithCoreLevel(atomic),
		hertzzap.WithZapOptions(zapOpts...),
	)
	hlog.SetLogger(hz)
	hlog.SetLevel(lvl.hlog)

	Logger = hz.Logger().With(
		zap.String("service", config.Cfg.ServiceName),
		zap.String("env", config.Cfg.Environment),
	)
	Logger.Info("Logger initialized",
		zap.String("level", atomic.Level().CapitalString()),
		zap.String("format", config.Cfg.LoggerFormat),
	)
}

func Sync() {
	// stdout 上的 Sync 在部分平台返回 EINVAL，忽略
	_ = Logger.Sync()

	if logClose != nil {
		_ = logClose.Close()
	}
}

// Named 返回带组件名的子 logger
func Named(component string) *zap.Logger {
	return Logger.With(zap.String("component", component))
}

func useConsole() bool {
	return config.Cfg.IsDevelopment() || strings.EqualFold(config.Cfg.LoggerFormat, "text")
}

func newEncoder(console bool) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeCaller = zapcore.ShortCallerEncoder

	if console {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(ec)
}

func newWriteSyncer(path string) zapcore.WriteSyncer {
	if path == "" || strings.EqualFold(path, "stdout") {
		return zapcore.AddSync(os.Stdout)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		panic("failed to open log file: " + err.Error())
	}
	logClose = file

	return zapcore.AddSync(file)
}
