package flatpak_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/flatpak"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte("org.gimp.GIMP\t2.10.36\norg.videolan.VLC\t3.0.20\n")
	recs, err := flatpak.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "org.gimp.GIMP", recs[0].Name)
	require.Equal(t, "2.10.36", recs[0].InstalledVersion)
}

func TestParseListOutdated(t *testing.T) {
	raw := []byte("org.gimp.GIMP\t2.10.38\n")
	recs, err := flatpak.ParseListOutdated(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "2.10.38", recs[0].LatestVersion)
}

func TestParseDetection(t *testing.T) {
	rec := flatpak.ParseDetection([]byte("Flatpak 1.14.4\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "1.14.4", rec.Version)
}
