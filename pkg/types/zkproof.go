// Package types provides zero-knowledge proof type definitions.
package types

// CircuitManifest 电路产物清单（manifest.json）
//
// 由电路编译/可信设置工具生成，证明程序只读取不修改。
// 清单描述电路的外部契约：参数映射、公开输入顺序、派生输出以及
// 证明后端必须使用的哈希配置。电路内部结构不在此描述。
type CircuitManifest struct {
	// 电路标识
	Name    string `json:"name"`
	Version uint32 `json:"version"`

	// 证明方案与曲线
	Scheme      string `json:"scheme"`        // groth16 | plonk
	Curve       string `json:"curve"`         // bn254 | bls12-381
	HashToField string `json:"hash_to_field"` // keccak256 | sha256

	// 命令行位置参数到电路输入名的映射（顺序敏感）
	Arguments []string `json:"arguments"`
	// 作为盐值处理的参数名（允许非数字文本）
	SaltArgument string `json:"salt_argument,omitempty"`

	// 见证向量布局：公开输入在前，私有输入在后，顺序即电路声明顺序
	PublicInputs  []string `json:"public_inputs"`
	PrivateInputs []string `json:"private_inputs"`

	// 由宿主侧计算的派生输出（例如承诺值）
	Derived []DerivedOutput `json:"derived,omitempty"`

	// 二进制文件及其 SHA-256 摘要
	Files ManifestFiles `json:"files"`

	// 约束数量（仅用于诊断）
	ConstraintCount int `json:"constraint_count"`
}

// DerivedOutput 派生输出定义
type DerivedOutput struct {
	Name      string   `json:"name"`      // 输出名，必须出现在 public_inputs 或 private_inputs 中
	Function  string   `json:"function"`  // 派生函数名，例如 mimc
	Arguments []string `json:"arguments"` // 参数名（按顺序）
}

// ManifestFiles 产物二进制文件
type ManifestFiles struct {
	ConstraintSystem       string `json:"constraint_system"`
	ConstraintSystemSHA256 string `json:"constraint_system_sha256"`
	ProvingKey             string `json:"proving_key"`
	ProvingKeySHA256       string `json:"proving_key_sha256"`
	VerifyingKey           string `json:"verifying_key,omitempty"`
	SolidityVerifier       string `json:"solidity_verifier,omitempty"`
}
