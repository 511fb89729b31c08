package zkproof

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	logpkg "github.com/weisyn/sulphurproof/internal/core/infrastructure/log"
)

func newTestExecutor() *WitnessExecutor {
	return NewWitnessExecutor(logpkg.NewNop(), zerolog.Nop())
}

func sulphurInputs(content, threshold, salt int64) CircuitInputs {
	return CircuitInputs{
		"sulphur_content": big.NewInt(content),
		"threshold":       big.NewInt(threshold),
		"salt":            big.NewInt(salt),
	}
}

// TestWitnessExecutor_Deterministic 相同输入得到相同的公开输出
func TestWitnessExecutor_Deterministic(t *testing.T) {
	artifact := loadArtifact(t, groth16Artifact(t))
	executor := newTestExecutor()

	first, err := executor.Execute(artifact, sulphurInputs(10, 50, 123))
	require.NoError(t, err)
	second, err := executor.Execute(artifact, sulphurInputs(10, 50, 123))
	require.NoError(t, err)

	require.Equal(t, len(first.PublicValues()), len(second.PublicValues()))
	for i := range first.PublicValues() {
		requireBigEqual(t, first.PublicValues()[i], second.PublicValues()[i])
	}

	// 公开输入顺序为 [threshold, commitment]
	public := first.PublicValues()
	require.Len(t, public, 2)
	requireBigEqual(t, big.NewInt(50), public[0])
	requireBigEqual(t, expectedCommitment(t, big.NewInt(10), big.NewInt(123)), public[1])

	// 不同盐值改变承诺
	other, err := executor.Execute(artifact, sulphurInputs(10, 50, 124))
	require.NoError(t, err)
	require.NotZero(t, public[1].Cmp(other.PublicValues()[1]))
}

// TestWitnessExecutor_Boundary 含硫量等于阈值时满足约束
func TestWitnessExecutor_Boundary(t *testing.T) {
	artifact := loadArtifact(t, groth16Artifact(t))
	_, err := newTestExecutor().Execute(artifact, sulphurInputs(50, 50, 1))
	require.NoError(t, err)

	_, err = newTestExecutor().Execute(artifact, sulphurInputs(0, 0, 0))
	require.NoError(t, err)
}

// TestWitnessExecutor_ConstraintViolation 超过阈值及域外取值都是约束违反
func TestWitnessExecutor_ConstraintViolation(t *testing.T) {
	artifact := loadArtifact(t, groth16Artifact(t))
	executor := newTestExecutor()

	exceeded := [][2]int64{{51, 50}, {60, 50}, {1, 0}, {1000000, 999999}}
	for _, c := range exceeded {
		_, err := executor.Execute(artifact, sulphurInputs(c[0], c[1], 123))
		require.ErrorIs(t, err, ErrConstraintViolation, "content=%d threshold=%d", c[0], c[1])
	}

	_, err := executor.Execute(artifact, sulphurInputs(-1, 50, 123))
	require.ErrorIs(t, err, ErrConstraintViolation)

	tooLarge := sulphurInputs(10, 50, 123)
	tooLarge["salt"] = new(big.Int).Set(ecc.BN254.ScalarField())
	_, err = executor.Execute(artifact, tooLarge)
	require.ErrorIs(t, err, ErrConstraintViolation)
}

// TestWitnessExecutor_MissingInput 清单输入缺失属于产物问题
func TestWitnessExecutor_MissingInput(t *testing.T) {
	artifact := loadArtifact(t, groth16Artifact(t))
	inputs := sulphurInputs(10, 50, 123)
	delete(inputs, "threshold")

	_, err := newTestExecutor().Execute(artifact, inputs)
	require.ErrorIs(t, err, ErrArtifactMalformed)
}
