package parsers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const psFixture = `USER       PID %CPU %MEM    VSZ   RSS TTY      STAT START   TIME COMMAND
root         1  0.0  0.1  22000  9000 ?        Ss   Jul29   0:02 /sbin/init
alice     1234 12.5  3.2 900000 524288 pts/0   Sl+  10:00   1:15 /usr/bin/firefox --new-window
`

func TestParseProcessTableDropsHeader(t *testing.T) {
	rows, err := ParseProcessTable(psFixture)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "root", rows[0].User)
	require.Equal(t, 1, rows[0].PID)
	require.Equal(t, "alice", rows[1].User)
	require.Equal(t, 1234, rows[1].PID)
	require.Equal(t, "/usr/bin/firefox --new-window", rows[1].Command)
}

func TestParseProcessTableMalformedRow(t *testing.T) {
	raw := "HEADER\nnot enough fields\n"
	_, err := ParseProcessTable(raw)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ReasonMalformedRow, perr.Reason)
}

func TestParseProcessTableNeverPanics(t *testing.T) {
	inputs := []string{"", "\n", "a b c d e f g h i j k l\n"}
	for _, in := range inputs {
		require.NotPanics(t, func() {
			_, _ = ParseProcessTable(in)
		})
	}
}
