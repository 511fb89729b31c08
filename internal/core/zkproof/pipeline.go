package zkproof

import (
	"context"
	"fmt"
	"io"
	"time"

	proverconfig "github.com/weisyn/sulphurproof/internal/config/prover"
	"github.com/weisyn/sulphurproof/internal/core/infrastructure/metrics"
	"github.com/weisyn/sulphurproof/pkg/interfaces/infrastructure/log"
)

// Stage 流程状态
type Stage int

const (
	StageInit Stage = iota
	StageArtifactLoaded
	StageInputsValidated
	StageWitnessComputed
	StageProofGenerated
	StageEncoded
	StageEmitted
	StageFailed
)

// String 返回状态名称
func (s Stage) String() string {
	switch s {
	case StageInit:
		return "Init"
	case StageArtifactLoaded:
		return "ArtifactLoaded"
	case StageInputsValidated:
		return "InputsValidated"
	case StageWitnessComputed:
		return "WitnessComputed"
	case StageProofGenerated:
		return "ProofGenerated"
	case StageEncoded:
		return "Encoded"
	case StageEmitted:
		return "Emitted"
	case StageFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Pipeline 证明生成流程
//
// 严格按 加载产物 → 校验输入 → 计算见证 → 生成证明 → 编码 → 输出 的顺序执行，
// 任一步失败立即终止，不重试。
type Pipeline struct {
	logger    log.Logger
	options   *proverconfig.ProverOptions
	loader    *ArtifactLoader
	validator *InputValidator
	executor  *WitnessExecutor
	prover    *Prover
	encoder   *ResultEncoder
	metrics   *metrics.RunMetrics
}

// NewPipeline 创建证明生成流程
func NewPipeline(
	logger log.Logger,
	options *proverconfig.ProverOptions,
	loader *ArtifactLoader,
	validator *InputValidator,
	executor *WitnessExecutor,
	prover *Prover,
	encoder *ResultEncoder,
	runMetrics *metrics.RunMetrics,
) *Pipeline {
	if runMetrics == nil {
		runMetrics = metrics.NewRunMetrics()
	}
	return &Pipeline{
		logger:    logger,
		options:   options,
		loader:    loader,
		validator: validator,
		executor:  executor,
		prover:    prover,
		encoder:   encoder,
		metrics:   runMetrics,
	}
}

// run 单次运行的状态
type run struct {
	p     *Pipeline
	stage Stage
	last  time.Time
}

// advance 进入下一个状态并记录耗时
func (r *run) advance(next Stage) {
	now := time.Now()
	r.p.metrics.ObserveStage(next.String(), now.Sub(r.last))
	r.last = now
	r.stage = next
	r.p.logger.Debugf("流程状态: %s", next)
}

// fail 进入 Failed 状态，attempted 为失败时正在进入的状态
func (r *run) fail(attempted Stage, err error) error {
	r.stage = StageFailed
	return &StageError{Stage: attempted, Err: err}
}

// Prove 执行到 Encoded 状态并返回编码结果
func (p *Pipeline) Prove(ctx context.Context, args []string) (EncodedResult, error) {
	r := &run{p: p, stage: StageInit, last: time.Now()}
	result, err := p.prove(ctx, r, args)
	p.finish(err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Run 执行完整流程，成功时把结果一次性写入 out
//
// 失败时 out 不会收到任何字节。
func (p *Pipeline) Run(ctx context.Context, args []string, out io.Writer) error {
	r := &run{p: p, stage: StageInit, last: time.Now()}
	result, err := p.prove(ctx, r, args)
	if err == nil {
		err = p.emit(r, result, out)
	}
	p.finish(err)
	return err
}

func (p *Pipeline) prove(ctx context.Context, r *run, args []string) (EncodedResult, error) {
	// 参数数量在加载产物前检查，缺参时无需触碰文件系统
	raw, err := p.validator.ParseArguments(args)
	if err != nil {
		return nil, r.fail(StageInputsValidated, err)
	}

	artifact, err := p.loader.LoadArtifact(p.options.ArtifactDir)
	if err != nil {
		return nil, r.fail(StageArtifactLoaded, err)
	}
	p.metrics.SetCircuit(artifact.Name())
	p.metrics.SetConstraintCount(artifact.NbConstraints())
	r.advance(StageArtifactLoaded)

	inputs, err := p.validator.Validate(artifact, raw)
	if err != nil {
		return nil, r.fail(StageInputsValidated, err)
	}
	r.advance(StageInputsValidated)

	w, err := p.executor.Execute(artifact, inputs)
	if err != nil {
		return nil, r.fail(StageWitnessComputed, err)
	}
	r.advance(StageWitnessComputed)

	proof, err := p.prover.Prove(ctx, artifact, w)
	if err != nil {
		return nil, r.fail(StageProofGenerated, err)
	}
	p.metrics.SetProofSize(len(proof.Proof))
	r.advance(StageProofGenerated)

	result, err := p.encoder.Encode(proof.Proof, proof.PublicInputs)
	if err != nil {
		return nil, r.fail(StageEncoded, err)
	}
	r.advance(StageEncoded)

	return result, nil
}

// emit 按输出格式写出结果，只调用一次 Write
func (p *Pipeline) emit(r *run, result EncodedResult, out io.Writer) error {
	payload := []byte(result)
	if p.options.OutputFormat == proverconfig.OutputFormatHex {
		payload = []byte(result.Hex())
	}
	if _, err := out.Write(payload); err != nil {
		return r.fail(StageEmitted, WrapEncodingFailedError(fmt.Errorf("写出结果失败: %w", err)))
	}
	r.advance(StageEmitted)
	p.logger.Infof("证明已输出: %d字节", len(payload))
	return nil
}

// finish 记录结果并按需写出指标文件
func (p *Pipeline) finish(err error) {
	if err != nil {
		stage, _ := StageOf(err)
		// 诊断信息由调用方写入stderr，这里只留给文件日志
		p.logger.Infof("证明流程失败: stage=%s, kind=%s, err=%v", stage, KindOf(err), err)
		p.metrics.SetOutcome(false, KindOf(err).String())
	} else {
		p.metrics.SetOutcome(true, "")
	}

	if p.options.MetricsFile == "" {
		return
	}
	if werr := p.metrics.WriteTextfile(p.options.MetricsFile); werr != nil {
		p.logger.Warnf("写入指标文件失败: %v", werr)
	}
}

// ExitCode 把流程错误映射为进程退出码
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
