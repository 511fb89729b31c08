package configs

import _ "embed"

// 内嵌的默认证明配置（未指定 --config 时使用）
//
//go:embed prover/config.json
var defaultProverConfig []byte

// GetDefaultProverConfig 获取内嵌的默认证明配置
func GetDefaultProverConfig() []byte {
	return defaultProverConfig
}
