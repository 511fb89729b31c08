// sulphur-prover 生成含硫量合规零知识证明
//
// 用法: sulphur-prover <sulphur_content> <threshold> <salt>
//
// 成功时退出码为0，标准输出只包含一个 ABI 编码的 (bytes, bytes32[]) 结果；
// 失败时退出码为1，诊断信息写入标准错误，标准输出为空。
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"golang.org/x/term"

	"github.com/weisyn/sulphurproof/internal/config"
	logconfig "github.com/weisyn/sulphurproof/internal/config/log"
	proverconfig "github.com/weisyn/sulphurproof/internal/config/prover"
	logmodule "github.com/weisyn/sulphurproof/internal/core/infrastructure/log"
	"github.com/weisyn/sulphurproof/internal/core/zkproof"
	ifconfig "github.com/weisyn/sulphurproof/pkg/interfaces/config"
	"github.com/weisyn/sulphurproof/pkg/interfaces/infrastructure/log"
)

// Flags 命令行标志
type Flags struct {
	ConfigPath   string // 配置文件路径
	ArtifactDir  string // 电路产物目录
	Threads      int    // 证明并行度
	OutputFormat string // 输出格式
	LogLevel     string // 日志级别
	BackendLog   string // gnark日志去向
	MetricsFile  string // 指标文件
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run 执行命令并返回退出码
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return zkproof.ExitCode(err)
	}
	return 0
}

// newRootCommand 创建根命令
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "sulphur-prover [flags] [--] <sulphur_content> <threshold> <salt>",
		Short: "生成含硫量合规零知识证明",
		Long: `sulphur-prover - 含硫量合规证明生成器

证明私有的含硫量不超过公开阈值，并用盐值生成隐藏承诺。
结果为 ABI 编码的 (bytes proof, bytes32[] publicInputs)，写入标准输出。

参数:
  sulphur_content  含硫量（十进制或0x十六进制整数，保密）
  threshold        阈值（十进制或0x十六进制整数，公开）
  salt             盐值（整数或任意非空文本，保密）

标志必须写在位置参数之前；第一个位置参数之后的内容按原样作为参数。
以 - 开头的第一个参数（例如负数）需放在 -- 之后:
  sulphur-prover --output-format hex -- -1 50 salt123`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return prove(cmd, flags, args, stdout, stderr)
		},
	}
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)
	cmd.Flags().SetInterspersed(false)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w (以 - 开头的参数请放在 -- 之后)", err)
	})

	cmd.Flags().StringVar(&flags.ConfigPath, "config", "", "配置文件路径 (默认使用内置配置)")
	cmd.Flags().StringVar(&flags.ArtifactDir, "artifact-dir", "", "电路产物目录 (默认: "+proverconfig.DefaultArtifactDir+")")
	cmd.Flags().IntVar(&flags.Threads, "threads", 1, "证明并行度: 0=全部CPU, 1=单线程, N=最多N个线程")
	cmd.Flags().StringVar(&flags.OutputFormat, "output-format", proverconfig.OutputFormatRaw, "输出格式: raw|hex")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "", "日志级别: debug|info|warn|error|fatal")
	cmd.Flags().StringVar(&flags.BackendLog, "backend-log", proverconfig.BackendLogDiscard, "gnark日志去向: discard|stderr")
	cmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "Prometheus textfile 指标输出路径")

	return cmd
}

// prove 组装依赖并执行证明流程
func prove(cmd *cobra.Command, flags *Flags, args []string, stdout, stderr io.Writer) error {
	appOptions, err := config.LoadAppOptions(flags.ConfigPath)
	if err != nil {
		return err
	}

	var (
		pipeline      *zkproof.Pipeline
		logger        log.Logger
		proverOptions *proverconfig.ProverOptions
	)
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			func() ifconfig.AppOptions { return appOptions },
			fx.Annotate(
				func() io.Writer { return stderr },
				fx.ResultTags(`name:"log_console"`),
			),
		),
		config.Module(),
		logmodule.Module(),
		zkproof.Module(),
		// 命令行标志优先于环境变量和配置文件
		fx.Decorate(func(options *proverconfig.ProverOptions) *proverconfig.ProverOptions {
			applyProverFlags(cmd, flags, options)
			return options
		}),
		fx.Decorate(func(options *logconfig.LogOptions) *logconfig.LogOptions {
			if cmd.Flags().Changed("log-level") {
				options.Level = flags.LogLevel
			}
			return options
		}),
		fx.Populate(&pipeline, &logger, &proverOptions),
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("初始化失败: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if proverOptions.OutputFormat == proverconfig.OutputFormatRaw && isTerminal(stdout) {
		logger.Warn("标准输出是终端，原始二进制结果不可读，可使用 --output-format hex")
	}

	return pipeline.Run(cmd.Context(), args, stdout)
}

// applyProverFlags 只覆盖显式指定的标志
func applyProverFlags(cmd *cobra.Command, flags *Flags, options *proverconfig.ProverOptions) {
	changed := cmd.Flags().Changed
	if changed("artifact-dir") {
		options.ArtifactDir = flags.ArtifactDir
	}
	if changed("threads") {
		options.Threads = flags.Threads
	}
	if changed("output-format") {
		options.OutputFormat = flags.OutputFormat
	}
	if changed("backend-log") {
		options.BackendLog = flags.BackendLog
	}
	if changed("metrics-file") {
		options.MetricsFile = flags.MetricsFile
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
