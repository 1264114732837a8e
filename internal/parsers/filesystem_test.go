package parsers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const dfFixture = `Filesystem      Size  Used Avail Use% Mounted on
/dev/nvme0n1p2  476G  210G  242G  47% /
tmpfs           7.8G     0  7.8G   0% /dev/shm
/dev/nvme0n1p1  512M  120K  512M   1% /boot
`

func TestParseFilesystemTableOmitsTmpfs(t *testing.T) {
	rows, err := ParseFilesystemTable(dfFixture)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		require.NotEqual(t, "tmpfs", r.Filesystem)
	}
	require.Equal(t, 47, rows[0].UsePercent)
	require.Equal(t, "/", rows[0].MountedOn)
}

func TestParseFilesystemTableWithTypeColumn(t *testing.T) {
	raw := "Filesystem     Type  Size  Used Avail Use% Mounted on\n" +
		"/dev/sda1      ext4  100G   50G   50G  50% /\n" +
		"none           devtmpfs 16G 0 16G 0% /dev\n"
	rows, err := ParseFilesystemTable(raw)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "/dev/sda1", rows[0].Filesystem)
}

func TestParseFilesystemTableMalformedRow(t *testing.T) {
	raw := "Filesystem      Size  Used Avail Use% Mounted on\nshort row\n"
	_, err := ParseFilesystemTable(raw)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ReasonMalformedRow, perr.Reason)
}

func TestParseFilesystemTableNeverPanics(t *testing.T) {
	inputs := []string{"", "\n\n", "a b c d e f g h i\n"}
	for _, in := range inputs {
		require.NotPanics(t, func() {
			_, _ = ParseFilesystemTable(in)
		})
	}
}
