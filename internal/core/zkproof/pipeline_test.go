package zkproof

import (
	"bytes"
	"context"
	"encoding/hex"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	proverconfig "github.com/weisyn/sulphurproof/internal/config/prover"
)

func textSalt(s string) *big.Int {
	n := new(big.Int).SetBytes(crypto.Keccak256([]byte(s)))
	return n.Mod(n, ecc.BN254.ScalarField())
}

// TestPipeline_Run 满足阈值的输入输出一个完整结果
func TestPipeline_Run(t *testing.T) {
	options := testOptions(groth16Artifact(t))
	pipeline := newTestPipeline(t, options)

	var out bytes.Buffer
	require.NoError(t, pipeline.Run(context.Background(), []string{"10", "50", "salt123"}, &out))
	require.NotZero(t, out.Len())

	proof, public, err := pipeline.encoder.Decode(out.Bytes())
	require.NoError(t, err)
	require.NotEmpty(t, proof)
	require.Len(t, public, 2)
	require.Equal(t, field32(big.NewInt(50)), public[0])
	require.Equal(t, field32(expectedCommitment(t, big.NewInt(10), textSalt("salt123"))), public[1])
}

// TestPipeline_RunHex 十六进制输出
func TestPipeline_RunHex(t *testing.T) {
	options := testOptions(groth16Artifact(t))
	options.OutputFormat = proverconfig.OutputFormatHex
	pipeline := newTestPipeline(t, options)

	var out bytes.Buffer
	require.NoError(t, pipeline.Run(context.Background(), []string{"10", "50", "salt123"}, &out))

	text := out.String()
	require.True(t, strings.HasPrefix(text, "0x"))
	raw, err := hex.DecodeString(text[2:])
	require.NoError(t, err)
	_, public, err := pipeline.encoder.Decode(raw)
	require.NoError(t, err)
	require.Len(t, public, 2)
}

// TestPipeline_Failures 每个失败点都不输出任何字节
func TestPipeline_Failures(t *testing.T) {
	malformed := copyArtifact(t, groth16Artifact(t))
	require.NoError(t, os.WriteFile(filepath.Join(malformed, ManifestFileName), []byte("[]"), 0644))

	cases := []struct {
		name  string
		dir   string
		args  []string
		kind  ErrorKind
		stage Stage
	}{
		{"无参数", filepath.Join(t.TempDir(), "missing"), nil, KindInvalidArgumentCount, StageInputsValidated},
		{"一个参数", groth16Artifact(t), []string{"10"}, KindInvalidArgumentCount, StageInputsValidated},
		{"两个参数", groth16Artifact(t), []string{"10", "50"}, KindInvalidArgumentCount, StageInputsValidated},
		{"产物缺失", filepath.Join(t.TempDir(), "missing"), []string{"10", "50", "salt123"}, KindArtifactNotFound, StageArtifactLoaded},
		{"产物损坏", malformed, []string{"10", "50", "salt123"}, KindArtifactMalformed, StageArtifactLoaded},
		{"输入格式", groth16Artifact(t), []string{"ten", "50", "salt123"}, KindInvalidInputFormat, StageInputsValidated},
		{"超过阈值", groth16Artifact(t), []string{"60", "50", "salt123"}, KindConstraintViolation, StageWitnessComputed},
		{"负数", groth16Artifact(t), []string{"-1", "50", "salt123"}, KindConstraintViolation, StageWitnessComputed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pipeline := newTestPipeline(t, testOptions(tc.dir))

			var out bytes.Buffer
			err := pipeline.Run(context.Background(), tc.args, &out)
			require.Error(t, err)
			require.Zero(t, out.Len())
			require.Equal(t, tc.kind, KindOf(err))
			require.Equal(t, 1, ExitCode(err))

			stage, ok := StageOf(err)
			require.True(t, ok)
			require.Equal(t, tc.stage, stage)
		})
	}
}

// TestPipeline_BackendFailure 证明后端失败时不输出
func TestPipeline_BackendFailure(t *testing.T) {
	options := testOptions(groth16Artifact(t))
	options.MinFreeMemoryMB = 1 << 40
	pipeline := newTestPipeline(t, options)
	pipeline.prover.freeMemory = func() uint64 { return 1 }

	var out bytes.Buffer
	err := pipeline.Run(context.Background(), []string{"10", "50", "salt123"}, &out)
	require.ErrorIs(t, err, ErrProofGenerationFailed)
	require.Zero(t, out.Len())

	stage, _ := StageOf(err)
	require.Equal(t, StageProofGenerated, stage)
}

// TestPipeline_EmitFailure 写出失败归为编码失败
func TestPipeline_EmitFailure(t *testing.T) {
	pipeline := newTestPipeline(t, testOptions(groth16Artifact(t)))

	err := pipeline.Run(context.Background(), []string{"10", "50", "salt123"}, failingWriter{})
	require.ErrorIs(t, err, ErrEncodingFailed)
	stage, _ := StageOf(err)
	require.Equal(t, StageEmitted, stage)
}

// TestPipeline_Prove 不写出时返回编码结果
func TestPipeline_Prove(t *testing.T) {
	pipeline := newTestPipeline(t, testOptions(groth16Artifact(t)))

	result, err := pipeline.Prove(context.Background(), []string{"10", "50", "7", "ignored"})
	require.NoError(t, err)
	_, public, err := pipeline.encoder.Decode(result)
	require.NoError(t, err)
	require.Equal(t, field32(expectedCommitment(t, big.NewInt(10), big.NewInt(7))), public[1])
}

// TestPipeline_MetricsFile 运行结束后写出指标文件
func TestPipeline_MetricsFile(t *testing.T) {
	options := testOptions(groth16Artifact(t))
	options.MetricsFile = filepath.Join(t.TempDir(), "sulphur.prom")
	pipeline := newTestPipeline(t, options)

	require.NoError(t, pipeline.Run(context.Background(), []string{"10", "50", "salt123"}, &bytes.Buffer{}))

	data, err := os.ReadFile(options.MetricsFile)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, `stage="ProofGenerated"`)
	require.Contains(t, text, `stage="Emitted"`)
	require.Contains(t, text, "sulphur_prover_last_run_success")
}

// TestStage_String 测试状态名称
func TestStage_String(t *testing.T) {
	names := []string{"Init", "ArtifactLoaded", "InputsValidated", "WitnessComputed", "ProofGenerated", "Encoded", "Emitted", "Failed"}
	for i, name := range names {
		require.Equal(t, name, Stage(i).String())
	}
	require.Equal(t, "Stage(42)", Stage(42).String())
	require.Equal(t, 0, ExitCode(nil))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, os.ErrClosed
}
