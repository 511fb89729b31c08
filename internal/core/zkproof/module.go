package zkproof

import (
	"io"
	"os"

	"go.uber.org/fx"

	proverconfig "github.com/weisyn/sulphurproof/internal/config/prover"
	"github.com/weisyn/sulphurproof/internal/core/infrastructure/metrics"
	logpkg "github.com/weisyn/sulphurproof/internal/core/infrastructure/log"
	"github.com/weisyn/sulphurproof/pkg/interfaces/infrastructure/log"
)

// ModuleParams 证明模块依赖
type ModuleParams struct {
	fx.In

	Logger  log.Logger
	Options *proverconfig.ProverOptions
	Console io.Writer `name:"log_console" optional:"true"` // gnark日志在 stderr 模式下的输出
}

// ModuleOutput 证明模块输出
type ModuleOutput struct {
	fx.Out

	Pipeline *Pipeline
	Loader   *ArtifactLoader
	Encoder  *ResultEncoder
	Metrics  *metrics.RunMetrics
}

// Module 返回证明模块
func Module() fx.Option {
	return fx.Module("zkproof",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 组装证明流程
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	if err := params.Options.Validate(); err != nil {
		return ModuleOutput{}, err
	}

	console := params.Console
	if console == nil {
		console = os.Stderr
	}
	sink := NewBackendSink(params.Options.BackendLog, console)
	logger := logpkg.NewModuleLogger(params.Logger, "zkproof")

	encoder, err := NewResultEncoder()
	if err != nil {
		return ModuleOutput{}, err
	}

	schemes := NewProvingSchemeRegistry(logger)
	loader := NewArtifactLoader(logger, schemes)
	runMetrics := metrics.NewRunMetrics()

	pipeline := NewPipeline(
		logger,
		params.Options,
		loader,
		NewInputValidator(logger),
		NewWitnessExecutor(logger, sink),
		NewProver(logger, params.Options, sink),
		encoder,
		runMetrics,
	)

	return ModuleOutput{
		Pipeline: pipeline,
		Loader:   loader,
		Encoder:  encoder,
		Metrics:  runMetrics,
	}, nil
}
