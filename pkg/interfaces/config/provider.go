// Package config provides configuration provider interfaces.
package config

import (
	logconfig "github.com/weisyn/sulphurproof/internal/config/log"
	proverconfig "github.com/weisyn/sulphurproof/internal/config/prover"
)

// Provider 配置提供者接口
type Provider interface {
	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetProver 获取证明生成配置
	GetProver() *proverconfig.ProverOptions
}
