// Package metrics 记录单次证明运行的指标
//
// 证明程序是一次性进程，没有 HTTP 端点可供抓取；
// 指标在运行结束时以 Prometheus 文本格式写入文件，
// 由 node-exporter 的 textfile collector 采集。
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics 单次运行指标
type RunMetrics struct {
	mu              sync.Mutex
	circuit         string
	stages          map[string]time.Duration
	constraintCount int
	proofBytes      int
	success         bool
	errorKind       string
	finishedAt      time.Time
}

// NewRunMetrics 创建运行指标
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{
		stages: make(map[string]time.Duration),
	}
}

// SetCircuit 记录电路名称
func (m *RunMetrics) SetCircuit(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.circuit = name
}

// ObserveStage 记录阶段耗时
func (m *RunMetrics) ObserveStage(stage string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages[stage] = d
}

// SetConstraintCount 记录约束数量
func (m *RunMetrics) SetConstraintCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraintCount = n
}

// SetProofSize 记录证明字节数
func (m *RunMetrics) SetProofSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proofBytes = n
}

// SetOutcome 记录运行结果，errorKind 在成功时为空
func (m *RunMetrics) SetOutcome(success bool, errorKind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.success = success
	m.errorKind = errorKind
	m.finishedAt = time.Now()
}

// WriteTextfile 把指标写入 Prometheus 文本文件
func (m *RunMetrics) WriteTextfile(path string) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(newRunCollector(m)); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, registry)
}

type runCollector struct {
	metrics *RunMetrics

	stageSeconds *prometheus.Desc
	constraints  *prometheus.Desc
	proofBytes   *prometheus.Desc
	success      *prometheus.Desc
	lastRun      *prometheus.Desc
}

func newRunCollector(m *RunMetrics) *runCollector {
	return &runCollector{
		metrics: m,
		stageSeconds: prometheus.NewDesc(
			"sulphur_prover_stage_duration_seconds",
			"Duration of each pipeline stage in the last run",
			[]string{"circuit", "stage"}, nil,
		),
		constraints: prometheus.NewDesc(
			"sulphur_prover_constraints",
			"Number of constraints of the loaded circuit",
			[]string{"circuit"}, nil,
		),
		proofBytes: prometheus.NewDesc(
			"sulphur_prover_proof_bytes",
			"Size of the generated proof in bytes",
			[]string{"circuit"}, nil,
		),
		success: prometheus.NewDesc(
			"sulphur_prover_last_run_success",
			"1 if the last run emitted a proof, otherwise 0",
			[]string{"circuit", "error_kind"}, nil,
		),
		lastRun: prometheus.NewDesc(
			"sulphur_prover_last_run_unix",
			"Unix timestamp of the end of the last run",
			nil, nil,
		),
	}
}

func (c *runCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.stageSeconds
	ch <- c.constraints
	ch <- c.proofBytes
	ch <- c.success
	ch <- c.lastRun
}

func (c *runCollector) Collect(ch chan<- prometheus.Metric) {
	m := c.metrics
	m.mu.Lock()
	defer m.mu.Unlock()

	stages := make([]string, 0, len(m.stages))
	for stage := range m.stages {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	for _, stage := range stages {
		ch <- prometheus.MustNewConstMetric(c.stageSeconds, prometheus.GaugeValue, m.stages[stage].Seconds(), m.circuit, stage)
	}

	ch <- prometheus.MustNewConstMetric(c.constraints, prometheus.GaugeValue, float64(m.constraintCount), m.circuit)
	ch <- prometheus.MustNewConstMetric(c.proofBytes, prometheus.GaugeValue, float64(m.proofBytes), m.circuit)

	var success float64
	if m.success {
		success = 1
	}
	ch <- prometheus.MustNewConstMetric(c.success, prometheus.GaugeValue, success, m.circuit, m.errorKind)
	ch <- prometheus.MustNewConstMetric(c.lastRun, prometheus.GaugeValue, float64(m.finishedAt.Unix()))
}
