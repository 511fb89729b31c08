// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称

	// 日志配置 - 对应配置文件中的 log 字段
	Log *UserLogConfig `json:"log,omitempty"`

	// 证明生成配置 - 对应配置文件中的 prover 字段
	Prover *UserProverConfig `json:"prover,omitempty"`
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径（为空时只输出到stderr）
}

// UserProverConfig 用户证明生成配置
// 只包含JSON配置文件中实际出现的字段
type UserProverConfig struct {
	ArtifactDir     *string `json:"artifact_dir,omitempty"`       // 电路产物目录
	Threads         *int    `json:"threads,omitempty"`            // 证明后端并行度：0=全部CPU，1=单线程
	BackendLog      *string `json:"backend_log,omitempty"`        // gnark日志去向：discard | stderr
	OutputFormat    *string `json:"output_format,omitempty"`      // 输出格式：raw | hex
	MinFreeMemoryMB *uint64 `json:"min_free_memory_mb,omitempty"` // 证明前要求的最小空闲内存（MB），0表示不检查
	MetricsFile     *string `json:"metrics_file,omitempty"`       // Prometheus textfile 输出路径
}
