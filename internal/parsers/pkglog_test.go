package parsers

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParsePackageLogLineUpgraded(t *testing.T) {
	line := "[2025-11-27T12:00:00+0100] [ALPM] upgraded vim (9.0.0 -> 9.0.1)"
	ev, err := ParsePackageLogLine(line)
	require.NoError(t, err)
	require.NotNil(t, ev)
	require.Equal(t, PackageUpgraded, ev.Kind)
	require.Equal(t, "vim", ev.Name)
	require.Equal(t, "9.0.0", ev.OldVersion)
	require.Equal(t, "9.0.1", ev.NewVersion)

	expectedTS, err := time.Parse("2006-01-02T15:04:05-0700", "2025-11-27T12:00:00+0100")
	require.NoError(t, err)
	require.True(t, expectedTS.Equal(ev.Timestamp))
}

func TestParsePackageLogLineInstalled(t *testing.T) {
	line := "[2025-11-27T12:05:00+0100] [ALPM] installed htop (3.3.0-1)"
	ev, err := ParsePackageLogLine(line)
	require.NoError(t, err)
	require.NotNil(t, ev)
	require.Equal(t, PackageInstalled, ev.Kind)
	require.Equal(t, "htop", ev.Name)
	require.Equal(t, "3.3.0-1", ev.NewVersion)
	require.Empty(t, ev.OldVersion)
}

func TestParsePackageLogLineNonMatchingIsNotAnError(t *testing.T) {
	ev, err := ParsePackageLogLine("[2025-11-27T12:05:00+0100] [ALPM-SCRIPTLET] running post-install hook")
	require.NoError(t, err)
	require.Nil(t, ev)
}

func TestParsePackageLogLineMalformedTimestamp(t *testing.T) {
	line := "[not-a-timestamp] [ALPM] installed htop (3.3.0-1)"
	_, err := ParsePackageLogLine(line)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ReasonUnexpectedValue, perr.Reason)
}

func TestParsePackageLogLineMalformedArrow(t *testing.T) {
	line := "[2025-11-27T12:00:00+0100] [ALPM] upgraded vim (not-an-arrow)"
	_, err := ParsePackageLogLine(line)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ReasonMalformedRow, perr.Reason)
}

func TestParsePackageLog(t *testing.T) {
	raw := "[2025-11-27T12:00:00+0100] [ALPM] upgraded vim (9.0.0 -> 9.0.1)\n" +
		"[2025-11-27T12:05:00+0100] [ALPM-SCRIPTLET] running post-install hook\n" +
		"[2025-11-27T12:06:00+0100] [ALPM] removed nano (7.2-1)\n"

	events, err := ParsePackageLog(raw)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, PackageUpgraded, events[0].Kind)
	require.Equal(t, PackageRemoved, events[1].Kind)
	require.Equal(t, "nano", events[1].Name)
}

// TestParsePackageLogScenario3GoldenFile is end-to-end scenario 3: a
// multi-line fixture ALPM log and its expected extracted events both
// live under testdata/, compared structurally via cmp.Diff.
func TestParsePackageLogScenario3GoldenFile(t *testing.T) {
	raw, err := os.ReadFile("testdata/pkglog_scenario3.input")
	require.NoError(t, err)

	got, err := ParsePackageLog(string(raw))
	require.NoError(t, err)

	goldenBytes, err := os.ReadFile("testdata/pkglog_scenario3.golden")
	require.NoError(t, err)
	var want []PackageEvent
	require.NoError(t, json.Unmarshal(goldenBytes, &want))

	require.Empty(t, cmp.Diff(want, got))
}

func TestParsePackageLogNeverPanics(t *testing.T) {
	inputs := []string{"", "\n", "[garbage\n", "[2025][ALPM] installed x ()\n"}
	for _, in := range inputs {
		require.NotPanics(t, func() {
			_, _ = ParsePackageLog(in)
		})
	}
}
