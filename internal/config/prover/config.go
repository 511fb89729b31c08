// Package prover 提供证明生成流程的配置
package prover

import (
	"fmt"

	configtypes "github.com/weisyn/sulphurproof/pkg/types"
)

// ProverOptions 证明生成配置选项
type ProverOptions struct {
	ArtifactDir     string `json:"artifact_dir"`       // 电路产物目录
	Threads         int    `json:"threads"`            // 证明后端并行度：0=全部CPU，1=单线程，N=最多N个
	BackendLog      string `json:"backend_log"`        // gnark日志去向：discard | stderr
	OutputFormat    string `json:"output_format"`      // 输出格式：raw | hex
	MinFreeMemoryMB uint64 `json:"min_free_memory_mb"` // 证明前要求的最小空闲内存（MB）
	MetricsFile     string `json:"metrics_file"`       // Prometheus textfile 输出路径
}

// Config 证明生成配置实现
type Config struct {
	options *ProverOptions
}

// New 创建证明生成配置
func New(userConfig *configtypes.UserProverConfig) *Config {
	options := createDefaultProverOptions()
	if userConfig != nil {
		applyUserProverConfig(options, userConfig)
	}
	return &Config{options: options}
}

// createDefaultProverOptions 创建默认配置
func createDefaultProverOptions() *ProverOptions {
	return &ProverOptions{
		ArtifactDir:     DefaultArtifactDir,
		Threads:         defaultThreads,
		BackendLog:      defaultBackendLog,
		OutputFormat:    defaultOutputFormat,
		MinFreeMemoryMB: defaultMinFreeMemoryMB,
		MetricsFile:     defaultMetricsFile,
	}
}

// applyUserProverConfig 应用用户配置覆盖默认值
func applyUserProverConfig(options *ProverOptions, userConfig *configtypes.UserProverConfig) {
	if userConfig.ArtifactDir != nil && *userConfig.ArtifactDir != "" {
		options.ArtifactDir = *userConfig.ArtifactDir
	}
	if userConfig.Threads != nil {
		options.Threads = *userConfig.Threads
	}
	if userConfig.BackendLog != nil {
		options.BackendLog = *userConfig.BackendLog
	}
	if userConfig.OutputFormat != nil {
		options.OutputFormat = *userConfig.OutputFormat
	}
	if userConfig.MinFreeMemoryMB != nil {
		options.MinFreeMemoryMB = *userConfig.MinFreeMemoryMB
	}
	if userConfig.MetricsFile != nil {
		options.MetricsFile = *userConfig.MetricsFile
	}
}

// GetOptions 获取完整的配置选项
func (c *Config) GetOptions() *ProverOptions {
	return c.options
}

// Validate 校验配置取值
func (o *ProverOptions) Validate() error {
	if o.ArtifactDir == "" {
		return fmt.Errorf("artifact_dir 不能为空")
	}
	if o.Threads < 0 {
		return fmt.Errorf("threads 不能为负数: %d", o.Threads)
	}
	switch o.BackendLog {
	case BackendLogDiscard, BackendLogStderr:
	default:
		return fmt.Errorf("不支持的 backend_log: %s", o.BackendLog)
	}
	switch o.OutputFormat {
	case OutputFormatRaw, OutputFormatHex:
	default:
		return fmt.Errorf("不支持的 output_format: %s", o.OutputFormat)
	}
	return nil
}
