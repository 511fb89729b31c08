package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	logpkg "github.com/weisyn/sulphurproof/internal/core/infrastructure/log"
	"github.com/weisyn/sulphurproof/internal/core/zkproof"
)

func TestRun_WritesLoadableArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sulphur")
	var stdout, stderr bytes.Buffer
	code := run([]string{"--out", dir, "--log-level", "warn"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.Contains(t, stdout.String(), dir)
	require.NotContains(t, stdout.String(), "compiling circuit")
	require.Contains(t, stderr.String(), "compiling circuit")

	for _, name := range []string{
		zkproof.ManifestFileName,
		zkproof.ConstraintSystemFileName,
		zkproof.ProvingKeyFileName,
		zkproof.VerifyingKeyFileName,
		zkproof.SolidityVerifierFileName,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	artifact, err := zkproof.NewArtifactLoader(logpkg.NewNop(), nil).LoadArtifact(dir)
	require.NoError(t, err)
	require.Equal(t, zkproof.SchemeGroth16, artifact.Scheme())
}

func TestRun_SkipsSolidityOffBN254(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sulphur")
	var stdout, stderr bytes.Buffer
	code := run([]string{"--out", dir, "--curve", "bls12-381", "--hash", "sha256"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.Contains(t, stderr.String(), "Solidity")

	_, err := os.Stat(filepath.Join(dir, zkproof.SolidityVerifierFileName))
	require.True(t, os.IsNotExist(err))
}

func TestRun_UnknownScheme(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--out", t.TempDir(), "--scheme", "stark"}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "错误:")
}
