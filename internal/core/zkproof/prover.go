package zkproof

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	// 基础设施
	proverconfig "github.com/weisyn/sulphurproof/internal/config/prover"
	logpkg "github.com/weisyn/sulphurproof/internal/core/infrastructure/log"
	"github.com/weisyn/sulphurproof/pkg/interfaces/infrastructure/log"

	// gnark ZK库
	"github.com/consensys/gnark-crypto/ecc"
	frbls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	frbn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/solidity"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint/solver"
	gnarklogger "github.com/consensys/gnark/logger"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/sha3"
)

// ProofResult 证明结果
type ProofResult struct {
	Proof           []byte     // 证明字节
	PublicInputs    [][32]byte // 公开输入（声明顺序，32字节大端）
	Scheme          string
	ConstraintCount int
	Duration        time.Duration
}

// NewBackendSink 根据配置创建 gnark 日志去向
//
// 默认丢弃；stderr 模式下输出到给定 writer，绝不写入 stdout。
func NewBackendSink(mode string, w io.Writer) zerolog.Logger {
	if mode != proverconfig.BackendLogStderr || w == nil {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).With().Timestamp().Logger()
}

// Prover 证明后端
type Prover struct {
	logger          log.Logger
	sink            zerolog.Logger
	threads         int
	minFreeMemoryMB uint64
	freeMemory      func() uint64
}

// NewProver 创建证明后端，logger 为空时不输出日志
func NewProver(logger log.Logger, options *proverconfig.ProverOptions, sink zerolog.Logger) *Prover {
	if logger == nil {
		logger = logpkg.NewNop()
	}
	p := &Prover{
		logger:     logger,
		sink:       sink,
		threads:    1,
		freeMemory: memory.FreeMemory,
	}
	if options != nil {
		p.threads = options.Threads
		p.minFreeMemoryMB = options.MinFreeMemoryMB
	}
	return p
}

// Prove 消费见证生成证明和有序公开输入
//
// 任何后端失败都返回 ErrProofGenerationFailed。
func (p *Prover) Prove(ctx context.Context, artifact *CircuitArtifact, w *Witness) (result *ProofResult, err error) {
	startTime := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}
	if artifact == nil {
		return nil, WrapProofGenerationFailedError("", errors.New("电路产物为空"))
	}
	name := artifact.Name()
	if w == nil || w.full == nil {
		return nil, WrapProofGenerationFailedError(name, errors.New("见证为空"))
	}
	if w.consumed {
		return nil, WrapProofGenerationFailedError(name, errors.New("见证已被使用"))
	}
	w.consumed = true

	if err := ctx.Err(); err != nil {
		return nil, WrapProofGenerationFailedError(name, err)
	}
	if err := p.checkFreeMemory(); err != nil {
		return nil, WrapProofGenerationFailedError(name, err)
	}

	// 并行度只在本次调用内生效
	threads := p.threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	prevProcs := runtime.GOMAXPROCS(threads)
	defer runtime.GOMAXPROCS(prevProcs)

	// gnark 内部日志切到本次调用的 sink，结束后恢复
	prevLogger := gnarklogger.Logger()
	gnarklogger.Set(p.sink)
	defer gnarklogger.Set(prevLogger)

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = WrapProofGenerationFailedError(name, fmt.Errorf("证明后端panic: %v", r))
		}
	}()

	p.logger.Debugf("开始生成证明: circuit=%s, scheme=%s, threads=%d", name, artifact.Scheme(), threads)

	proof, err := artifact.scheme.Prove(artifact.ccs, artifact.pk, w.full, p.proverOptions(artifact)...)
	if err != nil {
		return nil, WrapProofGenerationFailedError(name, err)
	}

	proofBytes, err := artifact.scheme.SerializeProof(proof)
	if err != nil {
		return nil, WrapProofGenerationFailedError(name, err)
	}

	publicInputs, err := publicInputBytes(w.full)
	if err != nil {
		return nil, WrapProofGenerationFailedError(name, err)
	}
	if len(publicInputs) != len(artifact.PublicInputNames()) {
		return nil, WrapProofGenerationFailedError(name, fmt.Errorf("公开输入数量不一致: expected=%d, actual=%d", len(artifact.PublicInputNames()), len(publicInputs)))
	}

	duration := time.Since(startTime)
	p.logger.Debugf("证明生成完成: 耗时=%v, 大小=%d字节", duration, len(proofBytes))

	return &ProofResult{
		Proof:           proofBytes,
		PublicInputs:    publicInputs,
		Scheme:          artifact.Scheme(),
		ConstraintCount: artifact.NbConstraints(),
		Duration:        duration,
	}, nil
}

// proverOptions 按产物的哈希配置构造 gnark 证明选项
//
// bn254 + keccak256 对应 Solidity 校验合约，其他组合直接指定哈希到域函数。
func (p *Prover) proverOptions(artifact *CircuitArtifact) []backend.ProverOption {
	opts := []backend.ProverOption{
		backend.WithSolverOptions(solver.WithLogger(p.sink)),
	}
	switch artifact.HashToField() {
	case HashKeccak256:
		if artifact.Curve() == ecc.BN254 {
			opts = append(opts, solidity.WithProverTargetSolidityVerifier(artifact.scheme.BackendID()))
		} else {
			opts = append(opts, backend.WithProverHashToFieldFunction(sha3.NewLegacyKeccak256()))
		}
	case HashSHA256:
		opts = append(opts, backend.WithProverHashToFieldFunction(sha256.New()))
	}
	return opts
}

// checkFreeMemory 检查空闲内存下限，无法探测时跳过
func (p *Prover) checkFreeMemory() error {
	if p.minFreeMemoryMB == 0 || p.freeMemory == nil {
		return nil
	}
	free := p.freeMemory()
	if free == 0 {
		p.logger.Warn("无法获取空闲内存，跳过内存检查")
		return nil
	}
	required := p.minFreeMemoryMB * 1024 * 1024
	if free < required {
		return fmt.Errorf("空闲内存不足: free=%dMB, required=%dMB", free/1024/1024, p.minFreeMemoryMB)
	}
	return nil
}

// publicInputBytes 从见证中提取公开部分，按32字节大端输出
func publicInputBytes(full witness.Witness) ([][32]byte, error) {
	public, err := full.Public()
	if err != nil {
		return nil, fmt.Errorf("提取公开见证失败: %w", err)
	}

	switch vec := public.Vector().(type) {
	case frbn254.Vector:
		out := make([][32]byte, len(vec))
		for i := range vec {
			out[i] = vec[i].Bytes()
		}
		return out, nil
	case frbls12381.Vector:
		out := make([][32]byte, len(vec))
		for i := range vec {
			out[i] = vec[i].Bytes()
		}
		return out, nil
	default:
		return nil, fmt.Errorf("不支持的见证向量类型: %T", vec)
	}
}
