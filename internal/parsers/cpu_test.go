package parsers

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const lscpuFixture = `Architecture:        x86_64
CPU op-mode(s):      32-bit, 64-bit
Byte Order:          Little Endian
CPU(s):              32
Vendor ID:           GenuineIntel
Model name:          Intel(R) Xeon(R)
Thread(s) per core:  2
Core(s) per socket:  24
Socket(s):           1
`

func TestParseCPUTopologyGolden(t *testing.T) {
	got, err := ParseCPUTopology(lscpuFixture)
	require.NoError(t, err)
	require.Equal(t, CPUTopology{
		Architecture:   "x86_64",
		ModelName:      "Intel(R) Xeon(R)",
		CPUCount:       32,
		CoresPerSocket: 24,
		ThreadsPerCore: 2,
		Sockets:        1,
		VendorID:       "GenuineIntel",
	}, got)
	require.Equal(t, 24, got.PhysicalCores())
	require.True(t, got.Hyperthreading())
}

// TestParseCPUTopologyScenario1GoldenFile is end-to-end scenario 1: the
// fixture lscpu output and its expected CPUTopology both live under
// testdata/, compared structurally via cmp.Diff rather than asserted
// field-by-field.
func TestParseCPUTopologyScenario1GoldenFile(t *testing.T) {
	raw, err := os.ReadFile("testdata/lscpu_scenario1.input")
	require.NoError(t, err)

	got, err := ParseCPUTopology(string(raw))
	require.NoError(t, err)

	goldenBytes, err := os.ReadFile("testdata/lscpu_scenario1.golden")
	require.NoError(t, err)
	var want CPUTopology
	require.NoError(t, json.Unmarshal(goldenBytes, &want))

	require.Empty(t, cmp.Diff(want, got))
}

func TestParseCPUTopologyMissingCPUCount(t *testing.T) {
	_, err := ParseCPUTopology("Architecture: x86_64\n")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ReasonMissingSection, perr.Reason)
}

func TestParseCPUTopologyNeverPanics(t *testing.T) {
	inputs := []string{"", "\x00\x01garbage", "CPU(s): notanumber\n", "CPU(s):\n:::::\n"}
	for _, in := range inputs {
		require.NotPanics(t, func() {
			_, _ = ParseCPUTopology(in)
		})
	}
}
