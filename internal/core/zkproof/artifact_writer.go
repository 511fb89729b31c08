package zkproof

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/solidity"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/schema"

	"github.com/weisyn/sulphurproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/sulphurproof/pkg/types"
)

// 产物目录中的默认文件名
const (
	ConstraintSystemFileName = "circuit.ccs"
	ProvingKeyFileName       = "circuit.pk"
	VerifyingKeyFileName     = "circuit.vk"
	SolidityVerifierFileName = "Verifier.sol"
)

// ArtifactSpec 生成产物所需的参数
type ArtifactSpec struct {
	Circuit        frontend.Circuit
	Manifest       types.CircuitManifest // 只需填写电路契约，方案、曲线等字段由下方参数覆盖
	Scheme         string
	Curve          string
	HashToField    string
	ExportSolidity bool
}

// ArtifactWriter 编译电路、执行可信设置并写出产物目录
type ArtifactWriter struct {
	logger  log.Logger
	schemes *ProvingSchemeRegistry
}

// NewArtifactWriter 创建产物写出器
func NewArtifactWriter(logger log.Logger, schemes *ProvingSchemeRegistry) *ArtifactWriter {
	if schemes == nil {
		schemes = NewProvingSchemeRegistry(logger)
	}
	return &ArtifactWriter{
		logger:  logger,
		schemes: schemes,
	}
}

// Write 写出产物目录，返回写入的清单
func (w *ArtifactWriter) Write(dir string, spec ArtifactSpec) (*types.CircuitManifest, error) {
	scheme, err := w.schemes.GetScheme(strings.ToLower(spec.Scheme))
	if err != nil {
		return nil, err
	}
	curve, err := resolveCurveID(spec.Curve)
	if err != nil {
		return nil, err
	}
	if spec.HashToField != HashKeccak256 && spec.HashToField != HashSHA256 {
		return nil, fmt.Errorf("不支持的哈希到域函数: %q", spec.HashToField)
	}

	// 1. 清单的输入顺序必须与电路声明一致，编译会写入电路字段，必须先检查
	if err := checkCircuitLayout(curve, spec.Circuit, &spec.Manifest); err != nil {
		return nil, err
	}

	// 2. 编译电路
	ccs, err := frontend.Compile(curve.ScalarField(), scheme.GetBuilder(), spec.Circuit)
	if err != nil {
		return nil, fmt.Errorf("编译电路失败: %w", err)
	}
	w.logger.Infof("电路编译完成: constraints=%d", ccs.GetNbConstraints())

	// 3. 可信设置
	pk, vk, err := scheme.Setup(ccs)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建产物目录失败 %s: %w", dir, err)
	}

	// 4. 写出二进制文件
	manifest := spec.Manifest
	manifest.Scheme = scheme.SchemeName()
	manifest.Curve = strings.ToLower(spec.Curve)
	manifest.HashToField = spec.HashToField
	manifest.ConstraintCount = ccs.GetNbConstraints()
	manifest.Files = types.ManifestFiles{
		ConstraintSystem: ConstraintSystemFileName,
		ProvingKey:       ProvingKeyFileName,
		VerifyingKey:     VerifyingKeyFileName,
	}

	if manifest.Files.ConstraintSystemSHA256, err = writeBinary(filepath.Join(dir, ConstraintSystemFileName), ccs); err != nil {
		return nil, err
	}
	if manifest.Files.ProvingKeySHA256, err = writeBinary(filepath.Join(dir, ProvingKeyFileName), pk); err != nil {
		return nil, err
	}
	if _, err = writeBinary(filepath.Join(dir, VerifyingKeyFileName), vk); err != nil {
		return nil, err
	}

	// 5. Solidity 校验合约，仅 bn254 支持
	if spec.ExportSolidity {
		if curve != ecc.BN254 {
			return nil, fmt.Errorf("曲线 %s 不支持导出 Solidity 校验合约", curve)
		}
		if err := exportSolidity(filepath.Join(dir, SolidityVerifierFileName), vk, spec.HashToField); err != nil {
			return nil, err
		}
		manifest.Files.SolidityVerifier = SolidityVerifierFileName
	}

	// 6. 清单最后写出，目录中出现清单即表示产物完整
	data, err := json.MarshalIndent(&manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化清单失败: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), append(data, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("写入清单失败: %w", err)
	}

	w.logger.Infof("电路产物已写出: dir=%s, scheme=%s, curve=%s", dir, manifest.Scheme, manifest.Curve)
	return &manifest, nil
}

// tVariable 电路输入叶子的类型
var tVariable = reflect.TypeOf((*frontend.Variable)(nil)).Elem()

// circuitInputNames 按 gnark 见证顺序列出电路的公开输入和私有输入名
func circuitInputNames(curve ecc.ID, circuit frontend.Circuit) (public, secret []string, err error) {
	_, err = schema.Walk(curve.ScalarField(), circuit, tVariable, func(leaf schema.LeafInfo, _ reflect.Value) error {
		switch leaf.Visibility {
		case schema.Public:
			public = append(public, leaf.FullName())
		case schema.Secret:
			secret = append(secret, leaf.FullName())
		}
		return nil
	})
	return public, secret, err
}

// checkCircuitLayout 校验清单的输入名和顺序与电路一致
func checkCircuitLayout(curve ecc.ID, circuit frontend.Circuit, m *types.CircuitManifest) error {
	public, secret, err := circuitInputNames(curve, circuit)
	if err != nil {
		return fmt.Errorf("解析电路输入失败: %w", err)
	}
	if !slices.Equal(public, m.PublicInputs) {
		return fmt.Errorf("清单公开输入与电路不一致: manifest=%v, circuit=%v", m.PublicInputs, public)
	}
	if !slices.Equal(secret, m.PrivateInputs) {
		return fmt.Errorf("清单私有输入与电路不一致: manifest=%v, circuit=%v", m.PrivateInputs, secret)
	}
	return nil
}

// writeBinary 写出 gnark 对象并返回文件的 SHA-256
func writeBinary(path string, obj io.WriterTo) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("创建文件失败 %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := obj.WriteTo(io.MultiWriter(f, h)); err != nil {
		return "", fmt.Errorf("写入文件失败 %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("同步文件失败 %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func exportSolidity(path string, vk VerifyingKey, hashToField string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建校验合约文件失败: %w", err)
	}
	defer f.Close()

	// 校验合约默认使用 legacy keccak256
	var opts []solidity.ExportOption
	if hashToField == HashSHA256 {
		opts = append(opts, solidity.WithHashToFieldFunction(sha256.New()))
	}
	if err := vk.ExportSolidity(f, opts...); err != nil {
		return fmt.Errorf("导出校验合约失败: %w", err)
	}
	return nil
}
