package dnf_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/dnf"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte("Installed Packages\nvim-enhanced.x86_64    2:8.2.2637-1.fc35    @updates\n")
	recs, err := dnf.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "vim-enhanced", recs[0].Name)
	require.Equal(t, "2:8.2.2637-1.fc35", recs[0].InstalledVersion)
}

func TestParseListOutdated(t *testing.T) {
	raw := []byte("Available Upgrades\nvim-enhanced.x86_64    2:8.2.2637-2.fc35    @updates\n")
	recs, err := dnf.ParseListOutdated(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "2:8.2.2637-2.fc35", recs[0].LatestVersion)
}

func TestParseDetection(t *testing.T) {
	rec := dnf.ParseDetection([]byte("4.14.0\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "4.14.0", rec.Version)
}
