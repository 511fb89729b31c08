package config

import (
	"os"
	"strconv"
	"strings"

	logconfig "github.com/weisyn/sulphurproof/internal/config/log"
	proverconfig "github.com/weisyn/sulphurproof/internal/config/prover"
	"github.com/weisyn/sulphurproof/pkg/interfaces/config"
	"github.com/weisyn/sulphurproof/pkg/types"
)

// 环境变量覆盖项
const (
	EnvArtifactDir   = "SULPHUR_ARTIFACT_DIR"
	EnvProverThreads = "SULPHUR_PROVER_THREADS"
	EnvLogLevel      = "SULPHUR_LOG_LEVEL"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
	lookupEnv func(string) (string, bool)
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	return newProvider(appConfig, os.LookupEnv)
}

func newProvider(appConfig *types.AppConfig, lookupEnv func(string) (string, bool)) *Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{
		appConfig: appConfig,
		lookupEnv: lookupEnv,
	}
}

// GetLog 获取日志配置
// 优先级：环境变量 > 配置文件 > 默认值
func (p *Provider) GetLog() *logconfig.LogOptions {
	user := &types.UserLogConfig{}
	if p.appConfig.Log != nil {
		*user = *p.appConfig.Log
	}
	if v, ok := p.env(EnvLogLevel); ok {
		user.Level = &v
	}
	return logconfig.New(user).GetOptions()
}

// GetProver 获取证明生成配置
// 优先级：环境变量 > 配置文件 > 默认值
func (p *Provider) GetProver() *proverconfig.ProverOptions {
	user := &types.UserProverConfig{}
	if p.appConfig.Prover != nil {
		*user = *p.appConfig.Prover
	}
	if v, ok := p.env(EnvArtifactDir); ok {
		user.ArtifactDir = &v
	}
	if v, ok := p.env(EnvProverThreads); ok {
		// 无法解析的值交给 Validate 报错，而不是悄悄忽略
		threads, err := strconv.Atoi(v)
		if err != nil {
			threads = -1
		}
		user.Threads = &threads
	}
	return proverconfig.New(user).GetOptions()
}

func (p *Provider) env(key string) (string, bool) {
	if p.lookupEnv == nil {
		return "", false
	}
	v, ok := p.lookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
