package prover

import (
	"testing"

	"github.com/stretchr/testify/require"
	configtypes "github.com/weisyn/sulphurproof/pkg/types"
)

func TestNew_Defaults(t *testing.T) {
	opts := New(nil).GetOptions()

	require.Equal(t, DefaultArtifactDir, opts.ArtifactDir)
	require.Equal(t, 1, opts.Threads)
	require.Equal(t, BackendLogDiscard, opts.BackendLog)
	require.Equal(t, OutputFormatRaw, opts.OutputFormat)
	require.NoError(t, opts.Validate())
}

func TestNew_UserOverrides(t *testing.T) {
	dir := "/srv/circuits/sulphur"
	threads := 4
	format := OutputFormatHex
	minMem := uint64(512)

	opts := New(&configtypes.UserProverConfig{
		ArtifactDir:     &dir,
		Threads:         &threads,
		OutputFormat:    &format,
		MinFreeMemoryMB: &minMem,
	}).GetOptions()

	require.Equal(t, dir, opts.ArtifactDir)
	require.Equal(t, 4, opts.Threads)
	require.Equal(t, OutputFormatHex, opts.OutputFormat)
	require.Equal(t, uint64(512), opts.MinFreeMemoryMB)
	// 未出现的字段保持默认值
	require.Equal(t, BackendLogDiscard, opts.BackendLog)
}

func TestNew_EmptyArtifactDirKeepsDefault(t *testing.T) {
	empty := ""
	opts := New(&configtypes.UserProverConfig{ArtifactDir: &empty}).GetOptions()
	require.Equal(t, DefaultArtifactDir, opts.ArtifactDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *ProverOptions)
	}{
		{"空产物目录", func(o *ProverOptions) { o.ArtifactDir = "" }},
		{"负线程数", func(o *ProverOptions) { o.Threads = -1 }},
		{"未知日志去向", func(o *ProverOptions) { o.BackendLog = "stdout" }},
		{"未知输出格式", func(o *ProverOptions) { o.OutputFormat = "json" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := New(nil).GetOptions()
			tt.mutate(opts)
			require.Error(t, opts.Validate())
		})
	}
}
