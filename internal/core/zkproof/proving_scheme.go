package zkproof

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	// 基础设施
	"github.com/weisyn/sulphurproof/pkg/interfaces/infrastructure/log"

	// gnark ZK库
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/backend/solidity"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"
)

// ============================================================================
// 证明方案抽象
// ============================================================================
//
// 🎯 **目的**：
//   - 电路产物中的 scheme 字段决定使用哪个方案
//   - 加载产物时用方案创建空的约束系统和证明密钥再反序列化
//   - 证明和可信设置都通过同一接口完成
//
// ============================================================================

// ProvingScheme 证明方案接口
type ProvingScheme interface {
	// SchemeName 返回方案名称
	SchemeName() string

	// BackendID 返回gnark后端标识
	BackendID() backend.ID

	// GetBuilder 获取电路构建器
	GetBuilder() frontend.NewBuilder

	// ConstantWires 返回约束系统公开变量中不属于见证的常量线数量
	ConstantWires() int

	// NewConstraintSystem 创建用于反序列化的空约束系统
	NewConstraintSystem(curveID ecc.ID) constraint.ConstraintSystem

	// NewProvingKey 创建用于反序列化的空证明密钥
	NewProvingKey(curveID ecc.ID) ProvingKey

	// Setup 生成可信设置（proving key和verifying key）
	Setup(compiledCircuit constraint.ConstraintSystem) (ProvingKey, VerifyingKey, error)

	// Prove 生成证明
	Prove(compiledCircuit constraint.ConstraintSystem, provingKey ProvingKey, fullWitness witness.Witness, opts ...backend.ProverOption) (Proof, error)

	// SerializeProof 序列化证明
	SerializeProof(proof Proof) ([]byte, error)
}

// Proof 证明接口
type Proof interface {
	io.WriterTo
}

// ProvingKey 证明密钥接口
type ProvingKey interface {
	io.WriterTo
	io.ReaderFrom
}

// VerifyingKey 验证密钥接口
type VerifyingKey interface {
	io.WriterTo
	ExportSolidity(w io.Writer, exportOpts ...solidity.ExportOption) error
}

// solidityMarshaler bn254 上的证明可以直接输出 Solidity 校验合约的 calldata 布局
type solidityMarshaler interface {
	MarshalSolidity() []byte
}

// serializeProof 优先使用 Solidity 布局，其他曲线退回 gnark 二进制格式
func serializeProof(proof Proof) ([]byte, error) {
	if p, ok := proof.(solidityMarshaler); ok {
		return p.MarshalSolidity(), nil
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================================================================
// Groth16
// ============================================================================

// Groth16Scheme Groth16证明方案实现
type Groth16Scheme struct {
	logger log.Logger
}

// NewGroth16Scheme 创建Groth16证明方案
func NewGroth16Scheme(logger log.Logger) *Groth16Scheme {
	return &Groth16Scheme{
		logger: logger,
	}
}

// SchemeName 返回方案名称
func (s *Groth16Scheme) SchemeName() string {
	return SchemeGroth16
}

// BackendID 返回gnark后端标识
func (s *Groth16Scheme) BackendID() backend.ID {
	return backend.GROTH16
}

// GetBuilder 获取电路构建器
func (s *Groth16Scheme) GetBuilder() frontend.NewBuilder {
	return r1cs.NewBuilder
}

// ConstantWires R1CS 的第一个公开变量是常量 1
func (s *Groth16Scheme) ConstantWires() int {
	return 1
}

// NewConstraintSystem 创建空的R1CS
func (s *Groth16Scheme) NewConstraintSystem(curveID ecc.ID) constraint.ConstraintSystem {
	return groth16.NewCS(curveID)
}

// NewProvingKey 创建空的Groth16证明密钥
func (s *Groth16Scheme) NewProvingKey(curveID ecc.ID) ProvingKey {
	return groth16.NewProvingKey(curveID)
}

// Setup 生成可信设置
func (s *Groth16Scheme) Setup(compiledCircuit constraint.ConstraintSystem) (ProvingKey, VerifyingKey, error) {
	pk, vk, err := groth16.Setup(compiledCircuit)
	if err != nil {
		return nil, nil, fmt.Errorf("Groth16 Setup失败: %w", err)
	}
	return pk, vk, nil
}

// Prove 生成证明
func (s *Groth16Scheme) Prove(compiledCircuit constraint.ConstraintSystem, provingKey ProvingKey, fullWitness witness.Witness, opts ...backend.ProverOption) (Proof, error) {
	// 类型断言：确保 provingKey 是 groth16.ProvingKey 类型
	groth16Pk, ok := provingKey.(groth16.ProvingKey)
	if !ok {
		return nil, fmt.Errorf("无效的Groth16证明密钥类型: %T", provingKey)
	}

	proof, err := groth16.Prove(compiledCircuit, groth16Pk, fullWitness, opts...)
	if err != nil {
		return nil, fmt.Errorf("Groth16 Prove失败: %w", err)
	}
	return proof, nil
}

// SerializeProof 序列化证明
func (s *Groth16Scheme) SerializeProof(proof Proof) ([]byte, error) {
	if _, ok := proof.(groth16.Proof); !ok {
		return nil, fmt.Errorf("无效的Groth16证明类型: %T", proof)
	}
	data, err := serializeProof(proof)
	if err != nil {
		return nil, fmt.Errorf("序列化Groth16证明失败: %w", err)
	}
	return data, nil
}

// ============================================================================
// PlonK
// ============================================================================

// PlonKScheme PlonK证明方案实现
type PlonKScheme struct {
	logger log.Logger
}

// NewPlonKScheme 创建PlonK证明方案
func NewPlonKScheme(logger log.Logger) *PlonKScheme {
	return &PlonKScheme{
		logger: logger,
	}
}

// SchemeName 返回方案名称
func (s *PlonKScheme) SchemeName() string {
	return SchemePlonK
}

// BackendID 返回gnark后端标识
func (s *PlonKScheme) BackendID() backend.ID {
	return backend.PLONK
}

// GetBuilder 获取电路构建器
func (s *PlonKScheme) GetBuilder() frontend.NewBuilder {
	return scs.NewBuilder
}

// ConstantWires SCS 没有常量线
func (s *PlonKScheme) ConstantWires() int {
	return 0
}

// NewConstraintSystem 创建空的SCS
func (s *PlonKScheme) NewConstraintSystem(curveID ecc.ID) constraint.ConstraintSystem {
	return plonk.NewCS(curveID)
}

// NewProvingKey 创建空的PlonK证明密钥
func (s *PlonKScheme) NewProvingKey(curveID ecc.ID) ProvingKey {
	return plonk.NewProvingKey(curveID)
}

// Setup 生成可信设置
//
// SRS 由 unsafekzg 按电路规模生成，只适用于开发和测试部署；
// 生产部署应使用仪式产生的 SRS。
func (s *PlonKScheme) Setup(compiledCircuit constraint.ConstraintSystem) (ProvingKey, VerifyingKey, error) {
	srs, srsLagrange, err := unsafekzg.NewSRS(compiledCircuit)
	if err != nil {
		return nil, nil, fmt.Errorf("生成KZG SRS失败: %w", err)
	}

	pk, vk, err := plonk.Setup(compiledCircuit, srs, srsLagrange)
	if err != nil {
		return nil, nil, fmt.Errorf("PlonK Setup失败: %w", err)
	}
	return pk, vk, nil
}

// Prove 生成证明
func (s *PlonKScheme) Prove(compiledCircuit constraint.ConstraintSystem, provingKey ProvingKey, fullWitness witness.Witness, opts ...backend.ProverOption) (Proof, error) {
	plonkPk, ok := provingKey.(plonk.ProvingKey)
	if !ok {
		return nil, fmt.Errorf("无效的PlonK证明密钥类型: %T", provingKey)
	}

	proof, err := plonk.Prove(compiledCircuit, plonkPk, fullWitness, opts...)
	if err != nil {
		return nil, fmt.Errorf("PlonK Prove失败: %w", err)
	}
	return proof, nil
}

// SerializeProof 序列化证明
func (s *PlonKScheme) SerializeProof(proof Proof) ([]byte, error) {
	if _, ok := proof.(plonk.Proof); !ok {
		return nil, fmt.Errorf("无效的PlonK证明类型: %T", proof)
	}
	data, err := serializeProof(proof)
	if err != nil {
		return nil, fmt.Errorf("序列化PlonK证明失败: %w", err)
	}
	return data, nil
}

// ============================================================================
// 方案注册表
// ============================================================================

// 支持的方案名称
const (
	SchemeGroth16 = "groth16"
	SchemePlonK   = "plonk"
)

// ProvingSchemeRegistry 证明方案注册表
type ProvingSchemeRegistry struct {
	logger  log.Logger
	schemes map[string]ProvingScheme
	mutex   sync.RWMutex
}

// NewProvingSchemeRegistry 创建证明方案注册表
func NewProvingSchemeRegistry(logger log.Logger) *ProvingSchemeRegistry {
	registry := &ProvingSchemeRegistry{
		logger:  logger,
		schemes: make(map[string]ProvingScheme),
	}

	// 注册默认方案
	registry.RegisterScheme(NewGroth16Scheme(logger))
	registry.RegisterScheme(NewPlonKScheme(logger))

	return registry
}

// RegisterScheme 注册证明方案
func (r *ProvingSchemeRegistry) RegisterScheme(scheme ProvingScheme) {
	if scheme == nil {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	schemeName := scheme.SchemeName()
	r.schemes[schemeName] = scheme

	if r.logger != nil {
		r.logger.Debugf("注册证明方案: %s", schemeName)
	}
}

// GetScheme 获取证明方案
func (r *ProvingSchemeRegistry) GetScheme(schemeName string) (ProvingScheme, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	scheme, exists := r.schemes[schemeName]
	if !exists {
		return nil, fmt.Errorf("未注册的证明方案: %s", schemeName)
	}

	return scheme, nil
}

// ListSchemes 列出所有注册的方案（按名称排序）
func (r *ProvingSchemeRegistry) ListSchemes() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	schemes := make([]string, 0, len(r.schemes))
	for name := range r.schemes {
		schemes = append(schemes, name)
	}
	sort.Strings(schemes)

	return schemes
}
