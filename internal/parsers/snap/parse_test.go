package snap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/snap"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte("Name     Version   Rev    Tracking       Publisher   Notes\n" +
		"core20   20231027  2264   latest/stable  canonical%2  base\n")
	recs, err := snap.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "core20", recs[0].Name)
	require.Equal(t, "20231027", recs[0].InstalledVersion)
}

func TestParseDetection(t *testing.T) {
	rec := snap.ParseDetection([]byte("snap    2.61.3\nsnapd   2.61.3\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "2.61.3", rec.Version)
}
