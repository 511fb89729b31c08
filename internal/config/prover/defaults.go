package prover

// 证明生成配置默认值
const (
	// DefaultArtifactDir 电路产物的固定默认位置（相对于工作目录）
	// 由 circuit-setup 工具写入
	DefaultArtifactDir = "target/sulphur"

	// defaultThreads 默认单线程证明
	// 部署环境通常限制并发，运维可通过配置放开
	defaultThreads = 1

	// defaultBackendLog gnark内部日志默认丢弃
	defaultBackendLog = BackendLogDiscard

	// defaultOutputFormat 默认输出原始ABI字节
	defaultOutputFormat = OutputFormatRaw

	// defaultMinFreeMemoryMB 默认不检查空闲内存
	defaultMinFreeMemoryMB = 0

	// defaultMetricsFile 默认不写指标文件
	defaultMetricsFile = ""
)

// gnark日志去向
const (
	BackendLogDiscard = "discard"
	BackendLogStderr  = "stderr"
)

// 输出格式
const (
	OutputFormatRaw = "raw"
	OutputFormatHex = "hex"
)
