package asdf_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/asdf"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte("  18.19.0\n *20.11.1\n")
	recs, err := asdf.ParseListInstalled("nodejs", raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "20.11.1", recs[1].InstalledVersion)
}

func TestParseListOutdated(t *testing.T) {
	recs := asdf.ParseListOutdated("nodejs", "20.11.1", "20.12.0")
	require.Len(t, recs, 1)
	require.True(t, recs[0].HasUpdate())
}

func TestParseLatestAvailable(t *testing.T) {
	raw := []byte("20.10.0\n20.11.0\n20.11.1\n")
	require.Equal(t, "20.11.1", asdf.ParseLatestAvailable(raw))
}

func TestParseDetection(t *testing.T) {
	rec := asdf.ParseDetection([]byte("v0.14.0-f76a1d1\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "0.14.0-f76a1d1", rec.Version)
}
