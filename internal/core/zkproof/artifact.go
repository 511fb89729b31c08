package zkproof

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/constraint/solver"
	"github.com/rs/zerolog"

	"github.com/weisyn/sulphurproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/sulphurproof/pkg/types"
)

// ManifestFileName 产物目录中的清单文件名
const ManifestFileName = "manifest.json"

// 哈希到域函数名称
const (
	HashKeccak256 = "keccak256"
	HashSHA256    = "sha256"
)

// RequiredArguments 命令行位置参数（顺序敏感）
var RequiredArguments = []string{"sulphur_content", "threshold", "salt"}

// supportedCurves 清单中的曲线名到 gnark 曲线的映射
var supportedCurves = map[string]ecc.ID{
	"bn254":     ecc.BN254,
	"bls12-381": ecc.BLS12_381,
}

// resolveCurveID 解析曲线名称
func resolveCurveID(name string) (ecc.ID, error) {
	id, ok := supportedCurves[strings.ToLower(name)]
	if !ok {
		return ecc.UNKNOWN, fmt.Errorf("不支持的曲线: %q", name)
	}
	return id, nil
}

// ConstraintSystem 已加载电路的能力接口
//
// 调用方只能看到电路的外部契约（参数、输入顺序、派生输出、约束检查），
// 看不到约束系统本身。
type ConstraintSystem interface {
	// Name 电路名称
	Name() string
	// Scheme 证明方案名称
	Scheme() string
	// Curve 电路所在曲线
	Curve() ecc.ID
	// Field 标量域模数
	Field() *big.Int
	// ArgumentNames 位置参数对应的输入名
	ArgumentNames() []string
	// SaltArgument 允许文本盐值的参数名，可能为空
	SaltArgument() string
	// PublicInputNames 公开输入名（声明顺序）
	PublicInputNames() []string
	// PrivateInputNames 私有输入名（声明顺序）
	PrivateInputNames() []string
	// Derivations 宿主侧计算的派生输出
	Derivations() []types.DerivedOutput
	// NbConstraints 约束数量
	NbConstraints() int
	// CheckSatisfied 检查完整见证是否满足全部约束
	CheckSatisfied(fullWitness witness.Witness, sink zerolog.Logger) error
}

// CircuitArtifact 已加载的电路产物
//
// 加载后不可变，只在一次运行内使用。
type CircuitArtifact struct {
	dir      string
	manifest types.CircuitManifest
	curve    ecc.ID
	scheme   ProvingScheme
	ccs      constraint.ConstraintSystem
	pk       ProvingKey
}

var _ ConstraintSystem = (*CircuitArtifact)(nil)

// Name 电路名称
func (a *CircuitArtifact) Name() string { return a.manifest.Name }

// Scheme 证明方案名称
func (a *CircuitArtifact) Scheme() string { return a.scheme.SchemeName() }

// Curve 电路所在曲线
func (a *CircuitArtifact) Curve() ecc.ID { return a.curve }

// Field 标量域模数
func (a *CircuitArtifact) Field() *big.Int { return a.curve.ScalarField() }

// HashToField 证明后端使用的哈希到域函数
func (a *CircuitArtifact) HashToField() string { return a.manifest.HashToField }

// ArgumentNames 位置参数对应的输入名
func (a *CircuitArtifact) ArgumentNames() []string { return a.manifest.Arguments }

// SaltArgument 允许文本盐值的参数名
func (a *CircuitArtifact) SaltArgument() string { return a.manifest.SaltArgument }

// PublicInputNames 公开输入名
func (a *CircuitArtifact) PublicInputNames() []string { return a.manifest.PublicInputs }

// PrivateInputNames 私有输入名
func (a *CircuitArtifact) PrivateInputNames() []string { return a.manifest.PrivateInputs }

// Derivations 派生输出
func (a *CircuitArtifact) Derivations() []types.DerivedOutput { return a.manifest.Derived }

// NbConstraints 约束数量
func (a *CircuitArtifact) NbConstraints() int { return a.ccs.GetNbConstraints() }

// Dir 产物目录
func (a *CircuitArtifact) Dir() string { return a.dir }

// CheckSatisfied 运行约束系统求解器
func (a *CircuitArtifact) CheckSatisfied(fullWitness witness.Witness, sink zerolog.Logger) error {
	return a.ccs.IsSolved(fullWitness, solver.WithLogger(sink))
}

// ============================================================================
// 产物加载
// ============================================================================

// ArtifactLoader 电路产物加载器
type ArtifactLoader struct {
	logger  log.Logger
	schemes *ProvingSchemeRegistry
}

// NewArtifactLoader 创建电路产物加载器
func NewArtifactLoader(logger log.Logger, schemes *ProvingSchemeRegistry) *ArtifactLoader {
	if schemes == nil {
		schemes = NewProvingSchemeRegistry(logger)
	}
	return &ArtifactLoader{
		logger:  logger,
		schemes: schemes,
	}
}

// LoadArtifact 从产物目录加载电路
//
// 目录、清单或二进制文件缺失返回 ErrArtifactNotFound；
// 清单内容、摘要或约束系统与清单不一致返回 ErrArtifactMalformed。
func (l *ArtifactLoader) LoadArtifact(dir string) (*CircuitArtifact, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, WrapArtifactNotFoundError(dir, err)
	}
	if !info.IsDir() {
		return nil, WrapArtifactMalformedError(dir, "不是目录")
	}

	manifestPath := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, WrapArtifactNotFoundError(manifestPath, err)
	}

	var manifest types.CircuitManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, WrapArtifactMalformedError(manifestPath, fmt.Sprintf("清单JSON无效: %v", err))
	}

	curve, scheme, err := l.validateManifest(&manifest)
	if err != nil {
		return nil, WrapArtifactMalformedError(manifestPath, err.Error())
	}

	artifact := &CircuitArtifact{
		dir:      dir,
		manifest: manifest,
		curve:    curve,
		scheme:   scheme,
		ccs:      scheme.NewConstraintSystem(curve),
		pk:       scheme.NewProvingKey(curve),
	}

	if err := readBinary(filepath.Join(dir, manifest.Files.ConstraintSystem), manifest.Files.ConstraintSystemSHA256, artifact.ccs); err != nil {
		return nil, err
	}
	if err := readBinary(filepath.Join(dir, manifest.Files.ProvingKey), manifest.Files.ProvingKeySHA256, artifact.pk); err != nil {
		return nil, err
	}

	if err := checkArity(artifact); err != nil {
		return nil, WrapArtifactMalformedError(dir, err.Error())
	}

	if l.logger != nil {
		l.logger.Debugf("电路产物加载完成: name=%s, version=%d, scheme=%s, curve=%s, constraints=%d",
			manifest.Name, manifest.Version, scheme.SchemeName(), curve, artifact.NbConstraints())
	}
	return artifact, nil
}

// validateManifest 校验清单的外部契约
func (l *ArtifactLoader) validateManifest(m *types.CircuitManifest) (ecc.ID, ProvingScheme, error) {
	if m.Name == "" {
		return ecc.UNKNOWN, nil, errors.New("缺少电路名称")
	}

	scheme, err := l.schemes.GetScheme(strings.ToLower(m.Scheme))
	if err != nil {
		return ecc.UNKNOWN, nil, err
	}

	curve, err := resolveCurveID(m.Curve)
	if err != nil {
		return ecc.UNKNOWN, nil, err
	}

	switch m.HashToField {
	case HashKeccak256, HashSHA256:
	default:
		return ecc.UNKNOWN, nil, fmt.Errorf("不支持的哈希到域函数: %q", m.HashToField)
	}

	if len(m.Arguments) != len(RequiredArguments) {
		return ecc.UNKNOWN, nil, fmt.Errorf("电路声明了%d个参数，证明程序只接受%d个", len(m.Arguments), len(RequiredArguments))
	}
	arguments, err := uniqueSet("arguments", m.Arguments)
	if err != nil {
		return ecc.UNKNOWN, nil, err
	}
	if m.SaltArgument != "" && !arguments[m.SaltArgument] {
		return ecc.UNKNOWN, nil, fmt.Errorf("salt_argument %q 不是已声明的参数", m.SaltArgument)
	}

	// 派生输出只能依赖参数，且函数必须已注册
	derived := make(map[string]bool, len(m.Derived))
	for _, d := range m.Derived {
		if d.Name == "" || arguments[d.Name] || derived[d.Name] {
			return ecc.UNKNOWN, nil, fmt.Errorf("派生输出名无效或重复: %q", d.Name)
		}
		if _, ok := lookupDerivation(d.Function); !ok {
			return ecc.UNKNOWN, nil, fmt.Errorf("未注册的派生函数: %q", d.Function)
		}
		if len(d.Arguments) == 0 {
			return ecc.UNKNOWN, nil, fmt.Errorf("派生输出 %q 没有参数", d.Name)
		}
		for _, arg := range d.Arguments {
			if !arguments[arg] {
				return ecc.UNKNOWN, nil, fmt.Errorf("派生输出 %q 引用了未声明的参数 %q", d.Name, arg)
			}
		}
		derived[d.Name] = true
	}

	// 每个电路输入都必须能由参数或派生输出提供
	all := make([]string, 0, len(m.PublicInputs)+len(m.PrivateInputs))
	all = append(all, m.PublicInputs...)
	all = append(all, m.PrivateInputs...)
	if _, err := uniqueSet("inputs", all); err != nil {
		return ecc.UNKNOWN, nil, err
	}
	for _, name := range all {
		if !arguments[name] && !derived[name] {
			return ecc.UNKNOWN, nil, fmt.Errorf("电路输入 %q 既不是参数也不是派生输出", name)
		}
	}

	if m.Files.ConstraintSystem == "" || m.Files.ProvingKey == "" {
		return ecc.UNKNOWN, nil, errors.New("缺少约束系统或证明密钥文件名")
	}

	return curve, scheme, nil
}

// readBinary 读取并反序列化二进制文件，同时校验 SHA-256 摘要
func readBinary(path, expectedDigest string, into io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return WrapArtifactNotFoundError(path, err)
	}
	defer f.Close()

	h := sha256.New()
	tee := io.TeeReader(f, h)
	if _, err := into.ReadFrom(tee); err != nil {
		return WrapArtifactMalformedError(path, fmt.Sprintf("反序列化失败: %v", err))
	}
	// 读取剩余字节，使摘要覆盖整个文件
	if _, err := io.Copy(io.Discard, tee); err != nil {
		return WrapArtifactMalformedError(path, fmt.Sprintf("读取失败: %v", err))
	}

	if expectedDigest != "" {
		actual := hex.EncodeToString(h.Sum(nil))
		if !strings.EqualFold(actual, expectedDigest) {
			return WrapArtifactMalformedError(path, fmt.Sprintf("SHA-256 不匹配: expected=%s, actual=%s", expectedDigest, actual))
		}
	}
	return nil
}

// checkArity 校验约束系统的输入数量与清单一致
func checkArity(a *CircuitArtifact) error {
	nbPublic := a.ccs.GetNbPublicVariables() - a.scheme.ConstantWires()
	if nbPublic != len(a.manifest.PublicInputs) {
		return fmt.Errorf("公开输入数量不一致: manifest=%d, constraint_system=%d", len(a.manifest.PublicInputs), nbPublic)
	}
	nbSecret := a.ccs.GetNbSecretVariables()
	if nbSecret != len(a.manifest.PrivateInputs) {
		return fmt.Errorf("私有输入数量不一致: manifest=%d, constraint_system=%d", len(a.manifest.PrivateInputs), nbSecret)
	}
	if a.manifest.ConstraintCount > 0 && a.manifest.ConstraintCount != a.ccs.GetNbConstraints() {
		return fmt.Errorf("约束数量不一致: manifest=%d, constraint_system=%d", a.manifest.ConstraintCount, a.ccs.GetNbConstraints())
	}
	return nil
}

func uniqueSet(field string, names []string) (map[string]bool, error) {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%s 中存在空名称", field)
		}
		if set[name] {
			return nil, fmt.Errorf("%s 中名称重复: %q", field, name)
		}
		set[name] = true
	}
	return set, nil
}
