// circuit-setup 编译含硫量合规电路并写出证明产物
//
// 产物目录包含 manifest.json、circuit.ccs、circuit.pk、circuit.vk，
// bn254 曲线下可额外导出 Verifier.sol 供链上验证。
//
// 注意：密钥来自本地单方可信设置（plonk 使用 unsafekzg），仅适用于开发和测试部署。
package main

import (
	"fmt"
	"io"
	"os"

	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/spf13/cobra"

	logconfig "github.com/weisyn/sulphurproof/internal/config/log"
	proverconfig "github.com/weisyn/sulphurproof/internal/config/prover"
	logpkg "github.com/weisyn/sulphurproof/internal/core/infrastructure/log"
	"github.com/weisyn/sulphurproof/internal/core/zkproof"
	"github.com/weisyn/sulphurproof/internal/core/zkproof/circuits"
)

// setupFlags 命令行标志
type setupFlags struct {
	out         string
	scheme      string
	curve       string
	hashToField string
	solidity    bool
	logLevel    string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &setupFlags{}

	cmd := &cobra.Command{
		Use:           "circuit-setup",
		Short:         "编译含硫量合规电路并生成证明产物",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setup(flags, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVar(&flags.out, "out", proverconfig.DefaultArtifactDir, "产物输出目录")
	cmd.Flags().StringVar(&flags.scheme, "scheme", zkproof.SchemeGroth16, "证明方案: groth16|plonk")
	cmd.Flags().StringVar(&flags.curve, "curve", "bn254", "曲线: bn254|bls12-381")
	cmd.Flags().StringVar(&flags.hashToField, "hash", zkproof.HashKeccak256, "证明哈希: keccak256|sha256")
	cmd.Flags().BoolVar(&flags.solidity, "solidity", true, "导出 Solidity 验证合约（仅 bn254）")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "日志级别")

	return cmd
}

func setup(flags *setupFlags, stdout, stderr io.Writer) error {
	logOptions := logconfig.New(nil).GetOptions()
	logOptions.Level = flags.logLevel
	logger, err := logpkg.NewWithConsole(logconfig.NewFromOptions(logOptions), stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// 编译和可信设置期间 gnark 日志写入 stderr，stdout 只留给结果摘要
	prevLogger := gnarklogger.Logger()
	gnarklogger.Set(zkproof.NewBackendSink(proverconfig.BackendLogStderr, stderr))
	defer gnarklogger.Set(prevLogger)

	exportSolidity := flags.solidity && flags.curve == "bn254"
	if flags.solidity && !exportSolidity {
		logger.Warnf("曲线 %s 不支持导出 Solidity 验证合约，已跳过", flags.curve)
	}

	writer := zkproof.NewArtifactWriter(logpkg.NewModuleLogger(logger, "circuit-setup"), nil)
	manifest, err := writer.Write(flags.out, zkproof.ArtifactSpec{
		Circuit:        &circuits.SulphurCircuit{},
		Manifest:       circuits.SulphurManifest(),
		Scheme:         flags.scheme,
		Curve:          flags.curve,
		HashToField:    flags.hashToField,
		ExportSolidity: exportSolidity,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✅ 产物已写入 %s\n", flags.out)
	fmt.Fprintf(stdout, "   电路: %s v%d\n", manifest.Name, manifest.Version)
	fmt.Fprintf(stdout, "   方案: %s / %s\n", manifest.Scheme, manifest.Curve)
	fmt.Fprintf(stdout, "   约束数: %d\n", manifest.ConstraintCount)
	return nil
}
