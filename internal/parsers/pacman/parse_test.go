package pacman_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/pacman"
)

func TestParseListInstalled(t *testing.T) {
	recs, err := pacman.ParseListInstalled([]byte("ripgrep 14.1.0-1\n"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "14.1.0-1", recs[0].InstalledVersion)
}

func TestParseListOutdated(t *testing.T) {
	recs, err := pacman.ParseListOutdated([]byte("ripgrep 14.1.0-1 -> 14.1.1-1\n"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.True(t, recs[0].HasUpdate())
}

func TestParseDetection(t *testing.T) {
	rec := pacman.ParseDetection([]byte("Pacman v6.0.2 - libalpm v13.0.2\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "6.0.2", rec.Version)
}
