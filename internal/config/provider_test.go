package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	proverconfig "github.com/weisyn/sulphurproof/internal/config/prover"
	"github.com/weisyn/sulphurproof/pkg/types"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// TestGetProver 测试证明配置的覆盖优先级
func TestGetProver(t *testing.T) {
	t.Run("未配置时使用默认值", func(t *testing.T) {
		p := newProvider(&types.AppConfig{}, envMap(nil))
		opts := p.GetProver()
		assert.Equal(t, proverconfig.DefaultArtifactDir, opts.ArtifactDir)
		assert.Equal(t, 1, opts.Threads)
	})

	t.Run("配置文件覆盖默认值", func(t *testing.T) {
		cfg := &types.AppConfig{Prover: &types.UserProverConfig{
			ArtifactDir: types.StringPtr("/opt/sulphur"),
			Threads:     types.IntPtr(2),
		}}
		opts := newProvider(cfg, envMap(nil)).GetProver()
		assert.Equal(t, "/opt/sulphur", opts.ArtifactDir)
		assert.Equal(t, 2, opts.Threads)
	})

	t.Run("环境变量覆盖配置文件", func(t *testing.T) {
		cfg := &types.AppConfig{Prover: &types.UserProverConfig{
			ArtifactDir: types.StringPtr("/opt/sulphur"),
		}}
		opts := newProvider(cfg, envMap(map[string]string{
			EnvArtifactDir:   "/mnt/artifacts",
			EnvProverThreads: "8",
		})).GetProver()
		assert.Equal(t, "/mnt/artifacts", opts.ArtifactDir)
		assert.Equal(t, 8, opts.Threads)
	})

	t.Run("无法解析的线程数在校验时报错", func(t *testing.T) {
		opts := newProvider(nil, envMap(map[string]string{EnvProverThreads: "many"})).GetProver()
		require.Error(t, opts.Validate())
	})

	t.Run("空白环境变量被忽略", func(t *testing.T) {
		opts := newProvider(nil, envMap(map[string]string{EnvArtifactDir: "  "})).GetProver()
		assert.Equal(t, proverconfig.DefaultArtifactDir, opts.ArtifactDir)
	})

	t.Run("不修改原始配置", func(t *testing.T) {
		cfg := &types.AppConfig{Prover: &types.UserProverConfig{ArtifactDir: types.StringPtr("/a")}}
		_ = newProvider(cfg, envMap(map[string]string{EnvArtifactDir: "/b"})).GetProver()
		assert.Equal(t, "/a", *cfg.Prover.ArtifactDir)
	})
}

// TestGetLog 测试日志配置
func TestGetLog(t *testing.T) {
	opts := newProvider(nil, envMap(nil)).GetLog()
	assert.Equal(t, "warn", opts.Level)
	assert.Empty(t, opts.FilePath)

	opts = newProvider(&types.AppConfig{Log: &types.UserLogConfig{Level: types.StringPtr("info")}},
		envMap(map[string]string{EnvLogLevel: "debug"})).GetLog()
	assert.Equal(t, "debug", opts.Level)
}

// TestLoadAppOptions 测试配置文件加载
func TestLoadAppOptions(t *testing.T) {
	t.Run("内嵌默认配置", func(t *testing.T) {
		opts, err := LoadAppOptions("")
		require.NoError(t, err)
		require.NotNil(t, opts.GetAppConfig())
	})

	t.Run("指定配置文件", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prover.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"prover":{"artifact_dir":"/x","output_format":"hex"}}`), 0600))

		opts, err := LoadAppOptions(path)
		require.NoError(t, err)
		prover := NewProvider(opts.GetAppConfig()).GetProver()
		assert.Equal(t, "hex", prover.OutputFormat)
	})

	t.Run("配置文件不存在", func(t *testing.T) {
		_, err := LoadAppOptions(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
	})

	t.Run("配置文件格式错误", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"prover":`), 0600))
		_, err := LoadAppOptions(path)
		require.Error(t, err)
	})
}
