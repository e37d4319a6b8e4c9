package pip_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/pip"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte(`[{"name": "requests", "version": "2.31.0"}]`)
	recs, err := pip.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "requests", recs[0].Name)
}

func TestParseListOutdated(t *testing.T) {
	raw := []byte(`[{"name": "requests", "version": "2.30.0", "latest_version": "2.31.0"}]`)
	recs, err := pip.ParseListOutdated(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.True(t, recs[0].HasUpdate())
}

func TestParseDetection(t *testing.T) {
	rec := pip.ParseDetection([]byte("pip 24.0 from /usr/lib/python3/dist-packages/pip (python 3.12)\n"))
	require.True(t, rec.Installed)
	require.Equal(t, "24.0", rec.Version)
}
