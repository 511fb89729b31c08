package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunMetrics_WriteTextfile(t *testing.T) {
	m := NewRunMetrics()
	m.SetCircuit("sulphur_compliance")
	m.ObserveStage("ArtifactLoaded", 250*time.Millisecond)
	m.ObserveStage("ProofGenerated", 2*time.Second)
	m.SetConstraintCount(1234)
	m.SetProofSize(256)
	m.SetOutcome(true, "")

	path := filepath.Join(t.TempDir(), "sulphur.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	require.Contains(t, text, `sulphur_prover_stage_duration_seconds{circuit="sulphur_compliance",stage="ProofGenerated"} 2`)
	require.Contains(t, text, `sulphur_prover_constraints{circuit="sulphur_compliance"} 1234`)
	require.Contains(t, text, `sulphur_prover_proof_bytes{circuit="sulphur_compliance"} 256`)
	require.Contains(t, text, `sulphur_prover_last_run_success{circuit="sulphur_compliance",error_kind=""} 1`)
}

func TestRunMetrics_Failure(t *testing.T) {
	m := NewRunMetrics()
	m.SetOutcome(false, "ConstraintViolation")

	path := filepath.Join(t.TempDir(), "sulphur.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `error_kind="ConstraintViolation"} 0`)
}
