// Package log 提供日志管理功能
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	logconfig "github.com/weisyn/sulphurproof/internal/config/log"
	logInterface "github.com/weisyn/sulphurproof/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ModuleParams 定义日志模块的依赖参数
type ModuleParams struct {
	fx.In

	Options *logconfig.LogOptions
	Console io.Writer `name:"log_console" optional:"true"` // 控制台输出，默认stderr
}

// ModuleOutput 定义日志模块的输出结构
type ModuleOutput struct {
	fx.Out

	Logger    logInterface.Logger // 日志记录器接口
	ZapLogger *zap.Logger         // zap.Logger 具体类型
}

// Module 返回日志模块
func Module() fx.Option {
	return fx.Module("log",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供日志服务
// 每次运行的日志都带有 run_id，便于在共享日志文件中区分多次调用
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	console := params.Console
	if console == nil {
		console = os.Stderr
	}
	logger, err := NewWithConsole(logconfig.NewFromOptions(params.Options), console)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("根据用户配置创建日志记录器失败: %w", err)
	}

	logger = logger.With("run_id", uuid.NewString())

	return ModuleOutput{
		Logger:    logger,
		ZapLogger: logger.GetZapLogger(),
	}, nil
}

// NewModuleLogger 创建带 module 字段的 logger
func NewModuleLogger(baseLogger logInterface.Logger, module string) logInterface.Logger {
	if baseLogger == nil {
		return nil
	}
	return baseLogger.With("module", module)
}
