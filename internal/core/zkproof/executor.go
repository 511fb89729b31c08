package zkproof

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/backend/witness"
	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/consensys/gnark/std"
	"github.com/rs/zerolog"

	"github.com/weisyn/sulphurproof/pkg/interfaces/infrastructure/log"
)

func init() {
	// gnark 全局日志默认写 stdout，而 stdout 只承载编码结果。
	// 需要 gnark 日志时由 Prover 在调用期间切换到配置的 sink。
	gnarklogger.Disable()

	// 反序列化的约束系统求解时需要 gnark 标准库的 hint
	std.RegisterHints()
}

// Witness 完整见证
//
// 每次证明使用独立的见证，被证明后端消费一次后不可再用。
type Witness struct {
	full     witness.Witness
	public   []*big.Int
	consumed bool
}

// PublicValues 按声明顺序返回公开输入的值
func (w *Witness) PublicValues() []*big.Int {
	out := make([]*big.Int, len(w.public))
	for i, v := range w.public {
		out[i] = new(big.Int).Set(v)
	}
	return out
}

// WitnessExecutor 见证执行器
type WitnessExecutor struct {
	logger log.Logger
	sink   zerolog.Logger
}

// NewWitnessExecutor 创建见证执行器，sink 接收约束求解器的日志
func NewWitnessExecutor(logger log.Logger, sink zerolog.Logger) *WitnessExecutor {
	return &WitnessExecutor{
		logger: logger,
		sink:   sink,
	}
}

// Execute 计算派生输出、组装见证并检查约束
//
// 负数、超出标量域的值以及约束不满足都返回 ErrConstraintViolation。
func (e *WitnessExecutor) Execute(cs ConstraintSystem, inputs CircuitInputs) (*Witness, error) {
	modulus := cs.Field()
	values := make(map[string]*big.Int, len(inputs)+len(cs.Derivations()))
	for name, v := range inputs {
		if v == nil {
			return nil, WrapInvalidInputFormatError(name, "", "缺少取值")
		}
		if v.Sign() < 0 {
			return nil, WrapConstraintViolationError(cs.Name(), fmt.Sprintf("%s 为负数", name))
		}
		if v.Cmp(modulus) >= 0 {
			return nil, WrapConstraintViolationError(cs.Name(), fmt.Sprintf("%s 超出标量域", name))
		}
		values[name] = v
	}

	// 1. 派生输出
	for _, d := range cs.Derivations() {
		fn, ok := lookupDerivation(d.Function)
		if !ok {
			return nil, WrapArtifactMalformedError(cs.Name(), fmt.Sprintf("未注册的派生函数: %s", d.Function))
		}
		args := make([]*big.Int, len(d.Arguments))
		for i, name := range d.Arguments {
			v, ok := values[name]
			if !ok {
				return nil, WrapArtifactMalformedError(cs.Name(), fmt.Sprintf("派生输出 %s 缺少参数 %s", d.Name, name))
			}
			args[i] = v
		}
		out, err := fn(cs.Curve(), args)
		if err != nil {
			return nil, WrapProofGenerationFailedError(cs.Name(), fmt.Errorf("计算派生输出 %s 失败: %w", d.Name, err))
		}
		values[d.Name] = out
	}

	// 2. 按声明顺序组装见证向量：公开输入在前，私有输入在后
	publicNames := cs.PublicInputNames()
	privateNames := cs.PrivateInputNames()
	ch := make(chan any, len(publicNames)+len(privateNames))
	public := make([]*big.Int, 0, len(publicNames))
	for _, name := range append(append([]string{}, publicNames...), privateNames...) {
		v, ok := values[name]
		if !ok {
			close(ch)
			return nil, WrapArtifactMalformedError(cs.Name(), fmt.Sprintf("缺少电路输入 %s", name))
		}
		if len(public) < len(publicNames) {
			public = append(public, v)
		}
		ch <- v
	}
	close(ch)

	full, err := witness.New(modulus)
	if err != nil {
		return nil, WrapProofGenerationFailedError(cs.Name(), err)
	}
	if err := full.Fill(len(publicNames), len(privateNames), ch); err != nil {
		return nil, WrapProofGenerationFailedError(cs.Name(), fmt.Errorf("填充见证失败: %w", err))
	}

	// 3. 约束检查
	if err := cs.CheckSatisfied(full, e.sink); err != nil {
		return nil, WrapConstraintViolationError(cs.Name(), err.Error())
	}

	if e.logger != nil {
		e.logger.Debugf("见证计算完成: circuit=%s, public=%d, private=%d", cs.Name(), len(publicNames), len(privateNames))
	}
	return &Witness{
		full:   full,
		public: public,
	}, nil
}
