package gem_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manifoldpm/manifold/internal/parsers/gem"
)

func TestParseListInstalled(t *testing.T) {
	raw := []byte("bundler (2.5.6)\nrake (13.1.0, 13.0.6)\n")
	recs, err := gem.ParseListInstalled(raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "13.1.0", recs[1].InstalledVersion)
}

func TestParseListOutdated(t *testing.T) {
	raw := []byte("bundler (2.5.6 < 2.5.7)\n")
	recs, err := gem.ParseListOutdated(raw)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.True(t, recs[0].HasUpdate())
}
